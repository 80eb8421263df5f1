package html2img

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-html2img/internal/markup"
)

// Document composer names.
const (
	DocumentFPDF   = "fpdf"
	DocumentChrome = "chrome"
)

// DocumentEngines lists the supported document composer names.
var DocumentEngines = []string{DocumentFPDF, DocumentChrome}

// ErrUnknownDocumentEngine is returned for an unsupported composer name.
var ErrUnknownDocumentEngine = errors.New("unknown document engine")

// StudioConfig selects the backends behind a Studio.
type StudioConfig struct {
	Engine   string // rod (default) or cdp
	Document string // fpdf (default) or chrome
	Browser  BrowserConfig
}

// Request is one render of pasted markup.
type Request struct {
	Markup         string
	CSS            string
	SourceDir      string
	Width          int
	Height         int
	Format         Format
	QualityPercent int    // 1..100; 0 uses the default quality
	Basename       string // filename stem; empty uses the exporter's
}

// ExportOptions returns the frame and quality of the request.
func (r Request) ExportOptions() ExportOptions {
	q := DefaultQuality
	if r.QualityPercent != 0 {
		q = QualityFromPercent(r.QualityPercent)
	}
	return ExportOptions{Width: r.Width, Height: r.Height, Quality: q}
}

// RequestFromState builds a request for the markup and settings of s.
func RequestFromState(s AppState) Request {
	return Request{
		Markup:         s.Markup,
		Width:          s.Width,
		Height:         s.Height,
		Format:         s.Format,
		QualityPercent: s.QualityPercent,
	}
}

// Studio ties markup preparation, an Engine and an Exporter together.
// Create with NewStudio, call Export, Preview or Overlay, and Close when done.
type Studio struct {
	engine   Engine
	owned    []Engine
	exporter *Exporter
	preparer *markup.Preparer
}

// NewStudio creates a Studio for cfg. Exporter options customize the
// timeout, deliverer, logger and so on; WithRasterizer and WithComposer
// override the backends selected by cfg.
func NewStudio(cfg StudioConfig, opts ...Option) (*Studio, error) {
	engine, err := NewEngine(cfg.Engine, cfg.Browser)
	if err != nil {
		return nil, err
	}

	var owned []Engine
	var composer DocumentComposer
	switch strings.ToLower(cfg.Document) {
	case "", DocumentFPDF:
		composer = NewPDFComposer()
	case DocumentChrome:
		rod, ok := engine.(*RodEngine)
		if !ok {
			rod = NewRodEngine(cfg.Browser)
			owned = append(owned, rod)
		}
		composer = NewChromeComposer(rod)
	default:
		return nil, fmt.Errorf("%w: %q (must be %s)", ErrUnknownDocumentEngine, cfg.Document, strings.Join(DocumentEngines, " or "))
	}

	s := newStudio(engine, append([]Option{WithComposer(composer)}, opts...)...)
	s.owned = owned
	return s, nil
}

// newStudio creates a Studio on an existing engine.
func newStudio(engine Engine, opts ...Option) *Studio {
	all := append([]Option{WithRasterizer(engine.Rasterizer())}, opts...)
	return &Studio{
		engine:   engine,
		exporter: NewExporter(all...),
		preparer: markup.NewPreparer(),
	}
}

// Reporter returns the status reporter of the studio's exporter.
func (s *Studio) Reporter() *Reporter {
	return s.exporter.Reporter()
}

// Busy reports whether an export is in flight.
func (s *Studio) Busy() bool {
	return s.exporter.Busy()
}

// Export renders req and runs it through the export pipeline.
// The export slot is held from validation through delivery, so a rejected
// call never touches the status. Load failures are reported as Failed like
// any pipeline failure.
func (s *Studio) Export(ctx context.Context, req Request) (*Artifact, error) {
	if !s.exporter.claim(ctx, req.Format) {
		return nil, ErrExportInProgress
	}
	defer s.exporter.release()

	opts := req.ExportOptions()
	if err := opts.Validate(); err != nil {
		s.Reporter().Fail(req.Format, err.Error())
		return nil, err
	}

	surface, err := s.load(ctx, req)
	if err != nil {
		s.Reporter().Fail(req.Format, err.Error())
		return nil, err
	}
	defer surface.Close()

	return s.exporter.run(ctx, surface, opts, req.Format, req.Basename)
}

// load prepares the markup and opens it on the engine.
func (s *Studio) load(ctx context.Context, req Request) (Surface, error) {
	if req.Markup == "" {
		return nil, ErrEmptyMarkup
	}
	prepared, err := s.preparer.Prepare(ctx, req.Markup, markup.Options{
		CSS:       req.CSS,
		SourceDir: req.SourceDir,
	})
	if err != nil {
		return nil, err
	}
	return s.engine.Load(ctx, prepared, req.Width, req.Height)
}

// Close releases the engines.
func (s *Studio) Close() error {
	errs := []error{s.engine.Close()}
	for _, e := range s.owned {
		errs = append(errs, e.Close())
	}
	return errors.Join(errs...)
}
