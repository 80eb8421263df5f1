package main

// Notes:
// - This file holds the fakes and helpers shared by the command tests.
// - Fakes implement Renderer, Pool and serveStudio without a browser.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/config"
)

// ---------------------------------------------------------------------------
// Fake renderer and pool
// ---------------------------------------------------------------------------

// fakeRenderer records requests and returns the markup as artifact data.
type fakeRenderer struct {
	mu       sync.Mutex
	requests []html2img.Request
	err      error
}

func (f *fakeRenderer) Export(ctx context.Context, req html2img.Request) (*html2img.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	basename := req.Basename
	if basename == "" {
		basename = html2img.DefaultBasename
	}
	return &html2img.Artifact{
		Data:     []byte(req.Markup),
		Filename: basename + "." + req.Format.Extension(),
		Format:   req.Format,
		MIME:     "application/octet-stream",
	}, nil
}

func (f *fakeRenderer) Requests() []html2img.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]html2img.Request(nil), f.requests...)
}

// fakePool hands out a single shared renderer.
type fakePool struct {
	renderer   *fakeRenderer
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
	closed   bool
}

func newFakePool(size int) *fakePool {
	return &fakePool{renderer: &fakeRenderer{}, size: size}
}

func (p *fakePool) Acquire(ctx context.Context) (Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return p.renderer, nil
}

func (p *fakePool) Release(Renderer) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// Fake serve studio
// ---------------------------------------------------------------------------

type fakeServeStudio struct {
	fakeRenderer
	reporter *html2img.Reporter
	closed   bool
}

func (s *fakeServeStudio) Preview(context.Context, html2img.Request, int, int) ([]byte, error) {
	return []byte("preview"), nil
}

func (s *fakeServeStudio) Overlay(context.Context, html2img.Request) ([]byte, error) {
	return []byte("overlay"), nil
}

func (s *fakeServeStudio) Reporter() *html2img.Reporter { return s.reporter }

func (s *fakeServeStudio) Close() error {
	s.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Fake asset loader
// ---------------------------------------------------------------------------

type fakeAssetLoader struct {
	styles  map[string]string
	samples map[string]string
}

func (l *fakeAssetLoader) LoadStyle(name string) (string, error) {
	if css, ok := l.styles[name]; ok {
		return css, nil
	}
	return "", assets.ErrStyleNotFound
}

func (l *fakeAssetLoader) LoadSample(name string) (string, error) {
	if markup, ok := l.samples[name]; ok {
		return markup, nil
	}
	return "", assets.ErrSampleNotFound
}

// ---------------------------------------------------------------------------
// Environment helpers
// ---------------------------------------------------------------------------

// testEnv bundles an Environment with its captured streams and fakes.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	pool   *fakePool
	studio *fakeServeStudio

	mu       sync.Mutex
	settings []studioSettings
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		pool:   newFakePool(1),
		studio: &fakeServeStudio{reporter: html2img.NewReporter()},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Stdin:  strings.NewReader(""),
		AssetLoader: &fakeAssetLoader{
			styles:  map[string]string{"default": "body{margin:0}"},
			samples: map[string]string{"default": "<h1>sample</h1>", "quote": "<blockquote>q</blockquote>"},
		},
		LoadConfig: func(name string) (*config.Config, error) {
			return nil, config.ErrConfigNotFound
		},
		NewPool: func(size int, s studioSettings) Pool {
			te.mu.Lock()
			te.settings = append(te.settings, s)
			te.mu.Unlock()
			te.pool.size = size
			return te.pool
		},
		NewStudio: func(s studioSettings) (serveStudio, error) {
			te.mu.Lock()
			te.settings = append(te.settings, s)
			te.mu.Unlock()
			return te.studio, nil
		},
	}
	return te
}

func (te *testEnv) lastSettings(t *testing.T) studioSettings {
	t.Helper()
	te.mu.Lock()
	defer te.mu.Unlock()
	if len(te.settings) == 0 {
		t.Fatal("no studio was created")
	}
	return te.settings[len(te.settings)-1]
}

// writeFile creates dir/name with content, creating parents.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

var errFake = errors.New("fake failure")
