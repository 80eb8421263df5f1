package markup

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPreparer_Prepare - Combined passes
// ---------------------------------------------------------------------------

func TestPreparer_Prepare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		opts         Options
		wantContains []string
		wantExact    string
	}{
		{
			name:      "no options leaves markup untouched",
			content:   `<div><img src="a.png"></div>`,
			opts:      Options{},
			wantExact: `<div><img src="a.png"></div>`,
		},
		{
			name:         "css only",
			content:      `<html><head></head><body></body></html>`,
			opts:         Options{CSS: "body{margin:0}"},
			wantContains: []string{"<style>body{margin:0}</style></head>"},
		},
		{
			name:         "both passes",
			content:      `<img src="a.png">`,
			opts:         Options{CSS: "img{width:10px}", SourceDir: testSourceDir()},
			wantContains: []string{"<style>img{width:10px}</style>", `src="file://`},
		},
	}

	p := NewPreparer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := p.Prepare(context.Background(), tt.content, tt.opts)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if tt.wantExact != "" && got != tt.wantExact {
				t.Errorf("Prepare() = %q, want %q", got, tt.wantExact)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Prepare() = %q, want to contain %q", got, want)
				}
			}
		})
	}
}

func TestPreparer_Prepare_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPreparer().Prepare(ctx, "<p>x</p>", Options{CSS: "p{}"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Prepare() error = %v, want context.Canceled", err)
	}
}
