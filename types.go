package html2img

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Quality bounds for the 1..100 slider exposed by the CLI and the web UI.
const (
	MinQualityPercent     = 1
	MaxQualityPercent     = 100
	DefaultQualityPercent = 95
)

// DefaultQuality is the lossy encoding quality used when none is given.
const DefaultQuality = float64(DefaultQualityPercent) / 100

// DefaultBasename is the artifact filename stem.
const DefaultBasename = "export"

// Default output frame, matching the "Instagram Post" preset.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1080
)

// QualityFromPercent maps a slider value to the [0,1] quality scale.
// Values outside 1..100 are clamped.
func QualityFromPercent(p int) float64 {
	if p < MinQualityPercent {
		p = MinQualityPercent
	}
	if p > MaxQualityPercent {
		p = MaxQualityPercent
	}
	return float64(p) / 100
}

// ExportOptions carries the frame and encoding settings for one export.
type ExportOptions struct {
	Width   int
	Height  int
	Quality float64 // in [0,1]; only JPEG uses it
}

// DefaultExportOptions returns the initial 1080x1080 frame at default quality.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Width: DefaultWidth, Height: DefaultHeight, Quality: DefaultQuality}
}

// Validate checks that dimensions are positive and quality is within [0,1].
func (o ExportOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d (width and height must be positive)", ErrInvalidDimensions, o.Width, o.Height)
	}
	if math.IsNaN(o.Quality) || o.Quality < 0 || o.Quality > 1 {
		return fmt.Errorf("%w: %g (must be between 0 and 1)", ErrInvalidQuality, o.Quality)
	}
	return nil
}

// Orientation of a document page.
type Orientation string

// Orientation constants.
const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// OrientationFor returns landscape when width exceeds height, portrait otherwise.
// Square frames are portrait.
func OrientationFor(width, height int) Orientation {
	if width > height {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// DocumentSpec describes the single page a DocumentComposer must produce.
// Width and Height are CSS pixels.
type DocumentSpec struct {
	Width       int
	Height      int
	Orientation Orientation
}

// RasterOptions is passed to every Rasterizer call.
type RasterOptions struct {
	Width   int
	Height  int
	Quality float64
}

// Artifact is the encoded result of one export.
type Artifact struct {
	Data     []byte
	Filename string
	Format   Format
	MIME     string
}

// Size returns the artifact length in bytes.
func (a *Artifact) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout  time.Duration
	basename string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the export timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2img: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithBasename sets the artifact filename stem. Empty keeps "export".
func WithBasename(name string) Option {
	return func(e *Exporter) {
		if name != "" {
			e.cfg.basename = name
		}
	}
}

// WithRasterizer sets the rasterizer used to encode the capture root.
func WithRasterizer(r Rasterizer) Option {
	return func(e *Exporter) {
		e.rasterizer = r
	}
}

// WithComposer sets the document composer used for PDF exports.
func WithComposer(c DocumentComposer) Option {
	return func(e *Exporter) {
		e.composer = c
	}
}

// WithDeliverer sets where finished artifacts are sent. Nil disables delivery.
func WithDeliverer(d Deliverer) Option {
	return func(e *Exporter) {
		e.deliverer = d
	}
}

// WithReporter shares a status reporter with other components.
func WithReporter(r *Reporter) Option {
	return func(e *Exporter) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithLogger sets the logger for export transitions. Nil keeps the discard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the instruments recording export outcomes.
func WithMetrics(m *Metrics) Option {
	return func(e *Exporter) {
		if m != nil {
			e.metrics = m
		}
	}
}

// discardLogger returns a logger that writes nowhere.
func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
