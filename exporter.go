package html2img

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"
)

// restoreTimeout bounds margin restoration after the export context ended.
const restoreTimeout = 5 * time.Second

// normalizedMargin is applied to the capture root while encoding.
const normalizedMargin = "0"

// Exporter runs the capture, encode and deliver pipeline for one source at a time.
// A call made while another is in flight is rejected with ErrExportInProgress.
type Exporter struct {
	cfg        exporterConfig
	rasterizer Rasterizer
	composer   DocumentComposer
	deliverer  Deliverer
	reporter   *Reporter
	log        *logrus.Logger
	metrics    *Metrics
	busy       atomic.Bool
}

// NewExporter creates an Exporter. A Rasterizer must be supplied with
// WithRasterizer; the document composer defaults to the fpdf composer.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		cfg:      exporterConfig{timeout: defaultTimeout, basename: DefaultBasename},
		composer: NewPDFComposer(),
		reporter: NewReporter(),
		log:      discardLogger(),
		metrics:  noopMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reporter returns the status reporter updated by this exporter.
func (e *Exporter) Reporter() *Reporter {
	return e.reporter
}

// Busy reports whether an export is in flight.
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Export captures src in the given format and delivers the artifact.
//
// Status moves to InProgress, then Success or Failed. Guard failures (invalid
// options, missing capture root) report Failed without entering InProgress
// and never call the rasterizer. The root's margin is forced to 0 while
// encoding and restored before the final status is reported.
// Recovers from internal panics and reports them as failures.
func (e *Exporter) Export(ctx context.Context, src CaptureSource, opts ExportOptions, format Format) (*Artifact, error) {
	return e.ExportNamed(ctx, src, opts, format, e.cfg.basename)
}

// ExportNamed is Export with a per-call filename stem. Empty uses the
// exporter's configured basename.
func (e *Exporter) ExportNamed(ctx context.Context, src CaptureSource, opts ExportOptions, format Format, basename string) (*Artifact, error) {
	if !e.claim(ctx, format) {
		return nil, ErrExportInProgress
	}
	defer e.release()
	return e.run(ctx, src, opts, format, basename)
}

// claim takes the exporter's single export slot. A refused claim is counted
// as rejected and leaves the status untouched.
func (e *Exporter) claim(ctx context.Context, format Format) bool {
	if e.busy.CompareAndSwap(false, true) {
		return true
	}
	e.metrics.record(ctx, format, OutcomeRejected, 0)
	return false
}

func (e *Exporter) release() {
	e.busy.Store(false)
}

// run is the export pipeline. The caller holds the slot.
func (e *Exporter) run(ctx context.Context, src CaptureSource, opts ExportOptions, format Format, basename string) (art *Artifact, err error) {
	if basename == "" {
		basename = e.cfg.basename
	}

	start := time.Now()
	log := e.log.WithFields(logrus.Fields{
		"format": format.String(),
		"width":  opts.Width,
		"height": opts.Height,
	})

	defer func() {
		if r := recover(); r != nil {
			art, err = nil, fmt.Errorf("internal error: %v", r)
			e.reporter.Fail(format, err.Error())
		}
		e.metrics.record(ctx, format, outcomeFor(err), time.Since(start))
		if err != nil {
			log.WithError(err).Warn("export failed")
		}
	}()

	if err := e.validate(opts, format); err != nil {
		e.reporter.Fail(format, err.Error())
		return nil, err
	}

	var root CaptureRoot
	if src != nil {
		root = src.Root()
	}
	if root == nil || e.rasterizer == nil {
		e.reporter.Fail(format, ErrCaptureUnavailable.Error())
		return nil, ErrCaptureUnavailable
	}

	e.reporter.Start(format)
	log.Debug("export started")

	tctx, cancel := context.WithTimeout(ctx, e.cfg.timeout)
	defer cancel()

	art, err = e.produce(tctx, src, root, opts, format, basename)
	if err != nil {
		e.reporter.Fail(format, err.Error())
		return nil, err
	}

	e.reporter.Succeed(format)
	log.WithFields(logrus.Fields{
		"filename": art.Filename,
		"bytes":    len(art.Data),
		"elapsed":  time.Since(start).Round(time.Millisecond).String(),
	}).Info("export finished")
	return art, nil
}

// validate checks options before any side effect.
func (e *Exporter) validate(opts ExportOptions, format Format) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
	}
	return opts.Validate()
}

// produce normalizes the root margin under the source's write lock, encodes
// and delivers, then restores the margin on every path. Errors are
// classified by the stage that failed.
func (e *Exporter) produce(ctx context.Context, src CaptureSource, root CaptureRoot, opts ExportOptions, format Format, basename string) (*Artifact, error) {
	if shared, ok := src.(SharedSource); ok {
		shared.Lock()
		defer shared.Unlock()
	}

	saved, err := root.Margin(ctx)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("reading margin: %w", err), ErrEncoding)
	}
	if err := root.SetMargin(ctx, normalizedMargin); err != nil {
		return nil, classify(ctx, fmt.Errorf("normalizing margin: %w", err), ErrEncoding)
	}
	defer e.restoreMargin(ctx, root, saved)

	data, err := e.encode(ctx, root, opts, format)
	if err == nil && len(data) == 0 {
		err = errors.New("encoder returned no data")
	}
	if err != nil {
		return nil, classify(ctx, err, ErrEncoding)
	}

	art := &Artifact{
		Data:     data,
		Filename: format.Filename(basename),
		Format:   format,
		MIME:     sniffMIME(data, format),
	}
	if e.deliverer != nil {
		if err := e.deliverer.Deliver(ctx, art); err != nil {
			return nil, classify(ctx, err, ErrDelivery)
		}
	}
	return art, nil
}

// restoreMargin puts the saved margin back even if ctx is done.
func (e *Exporter) restoreMargin(ctx context.Context, root CaptureRoot, margin string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()
	if err := root.SetMargin(rctx, margin); err != nil {
		e.log.WithError(err).Warn("restoring capture margin")
	}
}

// encode dispatches to the rasterizer for the requested format.
// Only JPEG honors the requested quality.
func (e *Exporter) encode(ctx context.Context, root CaptureRoot, opts ExportOptions, format Format) ([]byte, error) {
	ro := RasterOptions{Width: opts.Width, Height: opts.Height, Quality: 1.0}

	switch format {
	case FormatSVG:
		return e.rasterizer.ToSVG(ctx, root, ro)
	case FormatPNG:
		return e.rasterizer.ToPNG(ctx, root, ro)
	case FormatJPEG:
		ro.Quality = opts.Quality
		return e.rasterizer.ToJPEG(ctx, root, ro)
	case FormatPDF:
		png, err := e.rasterizer.ToPNG(ctx, root, ro)
		if err != nil {
			return nil, err
		}
		if e.composer == nil {
			return nil, errors.New("no document composer configured")
		}
		return e.composer.Compose(ctx, png, DocumentSpec{
			Width:       opts.Width,
			Height:      opts.Height,
			Orientation: OrientationFor(opts.Width, opts.Height),
		})
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(format))
}

// classify maps a stage error to its sentinel. Deadline expiry wins over
// the stage so the reason reads "timed out".
func classify(ctx context.Context, err, stage error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrExportTimeout
	}
	if errors.Is(err, stage) {
		return err
	}
	return fmt.Errorf("%w: %v", stage, err)
}

// outcomeFor returns the metric outcome attribute for an export result.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrExportTimeout):
		return OutcomeTimeout
	}
	return OutcomeFailed
}

// sniffMIME detects the media type from the payload, falling back to the
// format's declared type for text formats such as SVG.
func sniffMIME(data []byte, format Format) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return format.MIME()
	}
	return kind.MIME.Value
}
