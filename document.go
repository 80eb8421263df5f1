package html2img

import (
	"bytes"
	"context"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
)

// pxToPt converts CSS pixels (96 per inch) to PDF points (72 per inch).
const pxToPt = 72.0 / 96.0

// imageName is the resource name of the embedded capture.
const imageName = "capture"

// Compile-time interface checks.
var (
	_ DocumentComposer = (*PDFComposer)(nil)
)

// PDFComposer builds a single-page PDF sized to the capture, with the PNG
// drawn edge to edge. The page is landscape when width exceeds height.
type PDFComposer struct{}

// NewPDFComposer returns the default document composer.
func NewPDFComposer() *PDFComposer {
	return &PDFComposer{}
}

// Compose embeds png in a one-page document matching spec.
func (c *PDFComposer) Compose(ctx context.Context, png []byte, spec DocumentSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, spec.Width, spec.Height)
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrEncoding)
	}

	w := float64(spec.Width) * pxToPt
	h := float64(spec.Height) * pxToPt

	// fpdf swaps the page sides for landscape, so the size is given short side first.
	orientation := "P"
	if spec.Orientation == OrientationLandscape {
		orientation = "L"
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: min(w, h), Ht: max(w, h)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	return buf.Bytes(), nil
}
