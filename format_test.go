package html2img

import (
	"encoding/json"
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestParseFormat - Format names
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "svg", want: FormatSVG},
		{input: "PNG", want: FormatPNG},
		{input: "jpg", want: FormatJPEG},
		{input: "jpeg", want: FormatJPEG},
		{input: " pdf ", want: FormatPDF},
		{input: "gif", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormat_Attributes - Extension, MIME, label, filename
// ---------------------------------------------------------------------------

func TestFormat_Attributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   Format
		ext      string
		mime     string
		label    string
		filename string
	}{
		{FormatSVG, "svg", "image/svg+xml", "SVG", "export.svg"},
		{FormatPNG, "png", "image/png", "PNG", "export.png"},
		{FormatJPEG, "jpg", "image/jpeg", "JPG", "export.jpg"},
		{FormatPDF, "pdf", "application/pdf", "PDF", "export.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			if got := tt.format.Extension(); got != tt.ext {
				t.Errorf("Extension() = %q, want %q", got, tt.ext)
			}
			if got := tt.format.MIME(); got != tt.mime {
				t.Errorf("MIME() = %q, want %q", got, tt.mime)
			}
			if got := tt.format.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.format.Filename(DefaultBasename); got != tt.filename {
				t.Errorf("Filename() = %q, want %q", got, tt.filename)
			}
			if !tt.format.Valid() {
				t.Error("Valid() = false")
			}
		})
	}
}

func TestFormat_Invalid(t *testing.T) {
	t.Parallel()

	f := Format(9)
	if f.Valid() {
		t.Error("Valid() = true for unknown format")
	}
	if f.Extension() != "" {
		t.Errorf("Extension() = %q, want empty", f.Extension())
	}
	if f.MIME() != "application/octet-stream" {
		t.Errorf("MIME() = %q", f.MIME())
	}
	if f.String() != "Format(9)" {
		t.Errorf("String() = %q", f.String())
	}
	if _, err := f.MarshalText(); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("MarshalText() error = %v, want ErrUnknownFormat", err)
	}
}

func TestFormat_JSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Format Format `json:"format"`
	}

	data, err := json.Marshal(wrapper{Format: FormatJPEG})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"format":"jpg"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"format":"PDF"}`), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if w.Format != FormatPDF {
		t.Errorf("Unmarshal() = %v, want pdf", w.Format)
	}

	if err := json.Unmarshal([]byte(`{"format":"bmp"}`), &w); err == nil {
		t.Error("Unmarshal(bmp) succeeded, want error")
	}
}
