package html2img

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2img/internal/process"
)

// Compile-time interface checks.
var (
	_ Engine      = (*RodEngine)(nil)
	_ Rasterizer  = (*rodRasterizer)(nil)
	_ Surface     = (*rodSurface)(nil)
	_ CaptureRoot = (*rodRoot)(nil)
)

// browserExitGrace bounds how long Close waits for Chrome to exit on its own.
const browserExitGrace = 500 * time.Millisecond

// RodEngine renders markup in headless Chrome driven by go-rod.
// The browser is launched lazily on first Load and reused afterwards.
// Rod downloads Chromium on first run if no browser is found.
type RodEngine struct {
	cfg      BrowserConfig
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodEngine creates a RodEngine. No browser is started until Load.
func NewRodEngine(cfg BrowserConfig) *RodEngine {
	return &RodEngine{cfg: cfg.resolve()}
}

// ensureBrowser lazily connects to the browser.
func (r *RodEngine) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	if r.cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Load opens markup in a new page with a width x height viewport.
func (r *RodEngine) Load(ctx context.Context, markup string, width, height int) (Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if markup == "" {
		return nil, ErrEmptyMarkup
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	timeout := loadTimeout(ctx, r.cfg.Timeout)
	if timeout <= 0 {
		_ = page.Close()
		return nil, context.DeadlineExceeded
	}

	if err := page.SetDocumentContent(markup); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		_ = page.Close()
		return nil, err
	}

	body, err := page.Element("body")
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: locating body: %v", ErrPageLoad, err)
	}

	return &rodSurface{
		page:   page,
		root:   &rodRoot{page: page, el: body},
		width:  width,
		height: height,
	}, nil
}

// Rasterizer returns the screenshot-based rasterizer for rod surfaces.
func (r *RodEngine) Rasterizer() Rasterizer {
	return &rodRasterizer{}
}

// Close releases browser resources, killing the Chrome process group.
func (r *RodEngine) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			_ = process.TerminateTree(pid, browserExitGrace)
		}
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// loadTimeout returns the time left on ctx, or fallback without a deadline.
func loadTimeout(ctx context.Context, fallback time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}
	return fallback
}

// rodSurface is one loaded page.
type rodSurface struct {
	sync.RWMutex
	page   *rod.Page
	root   *rodRoot
	width  int
	height int
	closed atomic.Bool
}

func (s *rodSurface) Root() CaptureRoot {
	if s.closed.Load() || s.root == nil {
		return nil
	}
	return s.root
}

func (s *rodSurface) Size() (int, int) {
	return s.width, s.height
}

func (s *rodSurface) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.closed.Swap(true) {
		return nil
	}
	return s.page.Close()
}

// rodRoot is the body element of a rod page.
type rodRoot struct {
	page *rod.Page
	el   *rod.Element
}

func (n *rodRoot) Margin(ctx context.Context) (string, error) {
	res, err := n.el.Context(ctx).Eval(`() => this.style.margin`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (n *rodRoot) SetMargin(ctx context.Context, margin string) error {
	_, err := n.el.Context(ctx).Eval(`(m) => { this.style.margin = m }`, margin)
	return err
}

// rodRasterizer encodes rod roots with CDP screenshots and DOM serialization.
type rodRasterizer struct{}

func (rodRasterizer) node(root CaptureRoot) (*rodRoot, error) {
	n, ok := root.(*rodRoot)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedNode, root)
	}
	return n, nil
}

func (r rodRasterizer) ToSVG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	n, err := r.node(root)
	if err != nil {
		return nil, err
	}
	res, err := n.el.Context(ctx).Eval(serializeRootJS)
	if err != nil {
		return nil, fmt.Errorf("serializing DOM: %w", err)
	}
	return buildSVG(res.Value.Str(), opts.Width, opts.Height), nil
}

func (r rodRasterizer) ToPNG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return r.screenshot(ctx, root, opts, proto.PageCaptureScreenshotFormatPng, nil)
}

func (r rodRasterizer) ToJPEG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return r.screenshot(ctx, root, opts, proto.PageCaptureScreenshotFormatJpeg, intPtr(jpegQuality(opts.Quality)))
}

func (r rodRasterizer) screenshot(ctx context.Context, root CaptureRoot, opts RasterOptions, format proto.PageCaptureScreenshotFormat, quality *int) ([]byte, error) {
	n, err := r.node(root)
	if err != nil {
		return nil, err
	}
	data, err := n.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:                format,
		Quality:               quality,
		CaptureBeyondViewport: true,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  float64(opts.Width),
			Height: float64(opts.Height),
			Scale:  1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return data, nil
}
