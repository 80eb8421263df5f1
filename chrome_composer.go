package html2img

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/go-rod/rod/lib/proto"
)

// Compile-time interface checks.
var (
	_ DocumentComposer = (*ChromeComposer)(nil)
)

// cssPixelsPerInch converts CSS pixels to the inches used by print-to-PDF.
const cssPixelsPerInch = 96.0

// ChromeComposer prints a full-bleed image page with Chrome's PDF backend.
// It shares the browser of the RodEngine it was built from.
type ChromeComposer struct {
	engine *RodEngine
}

// NewChromeComposer creates a composer printing through engine's browser.
func NewChromeComposer(engine *RodEngine) *ChromeComposer {
	return &ChromeComposer{engine: engine}
}

// Compose prints png as a single page of spec.Width x spec.Height CSS pixels.
func (c *ChromeComposer) Compose(ctx context.Context, png []byte, spec DocumentSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrEncoding)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, spec.Width, spec.Height)
	}

	browser, err := c.engine.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := loadTimeout(ctx, c.engine.cfg.Timeout)
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	if err := page.SetDocumentContent(imageDocumentHTML(png, spec)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(buildPDFOptions(spec))
	if err != nil {
		return nil, fmt.Errorf("printing document: %w", err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return pdfBuf, nil
}

// buildPDFOptions sizes the paper to the frame with zero margins.
// Paper dimensions already encode the orientation.
func buildPDFOptions(spec DocumentSpec) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(float64(spec.Width) / cssPixelsPerInch),
		PaperHeight:       floatPtr(float64(spec.Height) / cssPixelsPerInch),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PageRanges:        "1",
	}
}

// imageDocumentHTML returns a page showing png edge to edge.
func imageDocumentHTML(png []byte, spec DocumentSpec) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><style>`+
		`@page{size:%[1]dpx %[2]dpx;margin:0}`+
		`html,body{margin:0;padding:0}`+
		`img{display:block;width:%[1]dpx;height:%[2]dpx}`+
		`</style></head><body><img src="data:image/png;base64,%[3]s"></body></html>`,
		spec.Width, spec.Height, base64.StdEncoding.EncodeToString(png))
}
