package html2img

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Compile-time interface checks.
var (
	_ Engine      = (*CDPEngine)(nil)
	_ Rasterizer  = (*cdpRasterizer)(nil)
	_ Surface     = (*cdpSurface)(nil)
	_ CaptureRoot = (*cdpRoot)(nil)
)

// CDPEngine renders markup in headless Chrome driven by chromedp.
// Unlike RodEngine it never downloads a browser: Chrome must be installed.
type CDPEngine struct {
	cfg           BrowserConfig
	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// NewCDPEngine creates a CDPEngine. No browser is started until Load.
func NewCDPEngine(cfg BrowserConfig) *CDPEngine {
	return &CDPEngine{cfg: cfg.resolve()}
}

// allocatorOptions returns the exec allocator flags for headless capture.
func (e *CDPEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if e.cfg.NoSandbox {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if e.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.Bin))
	}
	return opts
}

// ensureBrowser lazily starts the browser. The first Run on a chromedp
// context allocates the browser, so it must not carry a deadline.
func (e *CDPEngine) ensureBrowser() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil {
		return e.browserCtx, nil
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.browserCtx = browserCtx
	e.cancelBrowser = cancelBrowser
	e.cancelAlloc = cancelAlloc
	return browserCtx, nil
}

// Load opens markup in a new tab with a width x height viewport.
func (e *CDPEngine) Load(ctx context.Context, markup string, width, height int) (Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if markup == "" {
		return nil, ErrEmptyMarkup
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	browserCtx, err := e.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	s := &cdpSurface{tabCtx: tabCtx, cancel: cancelTab, width: width, height: height}

	timeout := loadTimeout(ctx, e.cfg.Timeout)
	if timeout <= 0 {
		cancelTab()
		return nil, context.DeadlineExceeded
	}
	loadCtx, cancelLoad := context.WithTimeout(ctx, timeout)
	defer cancelLoad()

	err = s.run(loadCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate("data:text/html;charset=utf-8,"+percentEncodeForDataURL(markup)),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		cancelTab()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	s.root = &cdpRoot{surface: s}
	return s, nil
}

// Rasterizer returns the screenshot-based rasterizer for chromedp surfaces.
func (e *CDPEngine) Rasterizer() Rasterizer {
	return cdpRasterizer{}
}

// Close shuts the browser down.
func (e *CDPEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx == nil {
		return nil
	}
	err := chromedp.Cancel(e.browserCtx)
	e.cancelBrowser()
	e.cancelAlloc()
	e.browserCtx = nil
	return err
}

// percentEncodeForDataURL encodes s for a data URL. Spaces become %20, not +.
func percentEncodeForDataURL(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// cdpSurface is one chromedp tab.
type cdpSurface struct {
	sync.RWMutex
	tabCtx context.Context
	cancel context.CancelFunc
	root   *cdpRoot
	width  int
	height int
	closed atomic.Bool
}

// run executes actions on the tab, bounded by ctx.
func (s *cdpSurface) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (s *cdpSurface) Root() CaptureRoot {
	if s.closed.Load() || s.root == nil {
		return nil
	}
	return s.root
}

func (s *cdpSurface) Size() (int, int) {
	return s.width, s.height
}

func (s *cdpSurface) Close() error {
	s.Lock()
	defer s.Unlock()
	if !s.closed.Swap(true) {
		s.cancel()
	}
	return nil
}

// cdpRoot is the body of a chromedp tab.
type cdpRoot struct {
	surface *cdpSurface
}

func (n *cdpRoot) Margin(ctx context.Context) (string, error) {
	var margin string
	if err := n.surface.run(ctx, chromedp.Evaluate(`document.body.style.margin`, &margin)); err != nil {
		return "", err
	}
	return margin, nil
}

func (n *cdpRoot) SetMargin(ctx context.Context, margin string) error {
	quoted, err := json.Marshal(margin)
	if err != nil {
		return err
	}
	var ignored any
	return n.surface.run(ctx, chromedp.Evaluate(fmt.Sprintf(`document.body.style.margin = %s`, quoted), &ignored))
}

// cdpRasterizer encodes chromedp roots.
type cdpRasterizer struct{}

func (cdpRasterizer) node(root CaptureRoot) (*cdpRoot, error) {
	n, ok := root.(*cdpRoot)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedNode, root)
	}
	return n, nil
}

func (r cdpRasterizer) ToSVG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	n, err := r.node(root)
	if err != nil {
		return nil, err
	}
	var xhtml string
	if err := n.surface.run(ctx, chromedp.Evaluate(`(`+serializeRootJS+`).call(document.body)`, &xhtml)); err != nil {
		return nil, fmt.Errorf("serializing DOM: %w", err)
	}
	return buildSVG(xhtml, opts.Width, opts.Height), nil
}

func (r cdpRasterizer) ToPNG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return r.screenshot(ctx, root, opts, page.CaptureScreenshotFormatPng, 0)
}

func (r cdpRasterizer) ToJPEG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error) {
	return r.screenshot(ctx, root, opts, page.CaptureScreenshotFormatJpeg, int64(jpegQuality(opts.Quality)))
}

func (r cdpRasterizer) screenshot(ctx context.Context, root CaptureRoot, opts RasterOptions, format page.CaptureScreenshotFormat, quality int64) ([]byte, error) {
	n, err := r.node(root)
	if err != nil {
		return nil, err
	}

	var buf []byte
	err = n.surface.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.CaptureScreenshot().
			WithFormat(format).
			WithCaptureBeyondViewport(true).
			WithClip(&page.Viewport{
				X:      0,
				Y:      0,
				Width:  float64(opts.Width),
				Height: float64(opts.Height),
				Scale:  1,
			})
		if format == page.CaptureScreenshotFormatJpeg {
			params = params.WithQuality(quality)
		}
		var err error
		buf, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}
