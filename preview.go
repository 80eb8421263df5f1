package html2img

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Preview renders req as a PNG scaled down to fit maxWidth x maxHeight,
// keeping the aspect ratio. Frames that already fit are not enlarged.
// It only reads the surface: margins and status are left alone.
func (s *Studio) Preview(ctx context.Context, req Request, maxWidth, maxHeight int) ([]byte, error) {
	data, err := s.Overlay(ctx, req)
	if err != nil {
		return nil, err
	}
	return scalePNG(data, maxWidth, maxHeight)
}

// Overlay renders req at its full frame size as a PNG for the expanded view.
// It takes the surface's read lock and never touches margins or status.
func (s *Studio) Overlay(ctx context.Context, req Request) ([]byte, error) {
	opts := req.ExportOptions()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	surface, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	return readOnlyCapture(ctx, surface, s.engine.Rasterizer(), opts)
}

// readOnlyCapture encodes src as PNG under its read lock.
func readOnlyCapture(ctx context.Context, src SharedSource, r Rasterizer, opts ExportOptions) ([]byte, error) {
	src.RLock()
	defer src.RUnlock()

	root := src.Root()
	if root == nil {
		return nil, ErrCaptureUnavailable
	}
	return r.ToPNG(ctx, root, RasterOptions{Width: opts.Width, Height: opts.Height, Quality: 1.0})
}

// FitWithin returns the largest size with the aspect ratio of w x h that fits
// in maxW x maxH without enlarging. Non-positive bounds leave the size as is.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare maxW/w against maxH/h without floating point.
	if maxW*h <= maxH*w {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

// scalePNG decodes data, resamples it to fit the bounds, and re-encodes it.
func scalePNG(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding preview: %v", ErrEncoding, err)
	}

	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return data, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: encoding preview: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
