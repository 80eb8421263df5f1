package html2img

// Notes:
// - In-package fakes for the capture interfaces, shared by all unit tests.
// - fakeRoot records every margin write so tests can assert the
//   normalize/restore sequence; fakeRasterizer records every call.
// - Real browser behavior is covered by the integration tests.

import (
	"context"
	"sync"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type fakeRoot struct {
	mu        sync.Mutex
	margin    string
	writes    []string
	readErr   error
	writeErr  error
	writeHook func(margin string)
}

func (r *fakeRoot) Margin(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return "", r.readErr
	}
	return r.margin, nil
}

func (r *fakeRoot) SetMargin(ctx context.Context, margin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, margin)
	if r.writeHook != nil {
		r.writeHook(margin)
	}
	if r.writeErr != nil {
		return r.writeErr
	}
	r.margin = margin
	return nil
}

func (r *fakeRoot) currentMargin() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.margin
}

func (r *fakeRoot) marginWrites() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

type fakeSource struct {
	sync.RWMutex
	root          CaptureRoot
	width, height int
	closed        bool
}

func (s *fakeSource) Root() CaptureRoot {
	if s.root == nil {
		return nil
	}
	return s.root
}

func (s *fakeSource) Size() (int, int) { return s.width, s.height }

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

func newFakeSource(margin string) (*fakeSource, *fakeRoot) {
	root := &fakeRoot{margin: margin}
	return &fakeSource{root: root, width: 1080, height: 1080}, root
}

type rasterCall struct {
	method string
	opts   RasterOptions
}

type fakeRasterizer struct {
	mu    sync.Mutex
	calls []rasterCall
	err   error

	// block, when set, is waited on before returning.
	block chan struct{}
	// started is closed on the first call.
	started chan struct{}
	once    sync.Once
	// marginDuring records the root margin observed while encoding.
	marginDuring []string
}

func (f *fakeRasterizer) record(ctx context.Context, method string, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rasterCall{method: method, opts: opts})
	if m, err := root.Margin(ctx); err == nil {
		f.marginDuring = append(f.marginDuring, m)
	}
	block := f.block
	f.mu.Unlock()

	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(method + "-bytes"), nil
}

func (f *fakeRasterizer) ToSVG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return f.record(ctx, "svg", root, opts)
}

func (f *fakeRasterizer) ToPNG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return f.record(ctx, "png", root, opts)
}

func (f *fakeRasterizer) ToJPEG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return f.record(ctx, "jpeg", root, opts)
}

func (f *fakeRasterizer) callList() []rasterCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rasterCall(nil), f.calls...)
}

type fakeComposer struct {
	called bool
	png    []byte
	spec   DocumentSpec
	err    error
}

func (c *fakeComposer) Compose(ctx context.Context, png []byte, spec DocumentSpec) ([]byte, error) {
	c.called = true
	c.png = png
	c.spec = spec
	if c.err != nil {
		return nil, c.err
	}
	return []byte("pdf-bytes"), nil
}

type fakeDeliverer struct {
	mu        sync.Mutex
	artifacts []*Artifact
	err       error
}

func (d *fakeDeliverer) Deliver(ctx context.Context, a *Artifact) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.artifacts = append(d.artifacts, a)
	return nil
}

type fakeEngine struct {
	mu         sync.Mutex
	rasterizer *fakeRasterizer
	loaded     []string
	loadErr    error
	surfaces   []*fakeSource
	closed     bool

	// loadGate, when set, is waited on before loading.
	loadGate chan struct{}
	// loadStarted is closed on the first load.
	loadStarted chan struct{}
	loadOnce    sync.Once
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{rasterizer: &fakeRasterizer{}}
}

func (e *fakeEngine) Load(ctx context.Context, markup string, width, height int) (Surface, error) {
	if e.loadStarted != nil {
		e.loadOnce.Do(func() { close(e.loadStarted) })
	}
	if e.loadGate != nil {
		<-e.loadGate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	e.loaded = append(e.loaded, markup)
	src := &fakeSource{root: &fakeRoot{margin: "8px"}, width: width, height: height}
	e.surfaces = append(e.surfaces, src)
	return src, nil
}

func (e *fakeEngine) Rasterizer() Rasterizer { return e.rasterizer }

func (e *fakeEngine) Close() error {
	e.closed = true
	return nil
}
