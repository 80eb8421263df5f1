package html2img

import "context"

// CaptureRoot is the rendered node whose visual output is exported.
// Margin values use CSS syntax ("", "0", "8px").
type CaptureRoot interface {
	Margin(ctx context.Context) (string, error)
	SetMargin(ctx context.Context, margin string) error
}

// CaptureSource exposes the isolated rendering surface to the exporter.
// Root returns nil while nothing is loaded.
type CaptureSource interface {
	Root() CaptureRoot
	Size() (width, height int)
}

// SharedSource is a CaptureSource that coordinates readers and writers.
// Export takes the write lock across margin normalization and restore;
// previews take the read lock.
type SharedSource interface {
	CaptureSource
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// Rasterizer turns a capture root into encoded bytes.
type Rasterizer interface {
	ToSVG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error)
	ToPNG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error)
	ToJPEG(ctx context.Context, root CaptureRoot, opts RasterOptions) ([]byte, error)
}

// DocumentComposer embeds a full-bleed PNG into a single-page document.
type DocumentComposer interface {
	Compose(ctx context.Context, png []byte, spec DocumentSpec) ([]byte, error)
}

// Deliverer hands a finished artifact to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, a *Artifact) error
}

// Surface is a loaded capture source that owns browser resources.
type Surface interface {
	SharedSource
	Close() error
}

// Engine loads markup into isolated surfaces and encodes them.
type Engine interface {
	Load(ctx context.Context, markup string, width, height int) (Surface, error)
	Rasterizer() Rasterizer
	Close() error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, a *Artifact) error

// Deliver calls f(ctx, a).
func (f DelivererFunc) Deliver(ctx context.Context, a *Artifact) error {
	return f(ctx, a)
}
