package html2img

import (
	"fmt"
	"strings"
)

// Format selects the export artifact type.
type Format int

// Supported export formats.
const (
	FormatSVG  Format = iota // vector image
	FormatPNG                // lossless raster
	FormatJPEG               // lossy raster
	FormatPDF                // single-page document
)

// Formats lists every format in UI order.
var Formats = []Format{FormatSVG, FormatPNG, FormatJPEG, FormatPDF}

// ParseFormat parses a format name (svg, png, jpg, jpeg, pdf), case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return 0, fmt.Errorf("%w: %q (must be svg, png, jpg, or pdf)", ErrUnknownFormat, s)
}

// Extension returns the canonical file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatSVG:
		return "svg"
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpg"
	case FormatPDF:
		return "pdf"
	}
	return ""
}

// MIME returns the media type of artifacts in this format.
func (f Format) MIME() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Label returns the display name used in status messages ("SVG", "JPG").
func (f Format) Label() string {
	return strings.ToUpper(f.Extension())
}

// String implements fmt.Stringer.
func (f Format) String() string {
	if ext := f.Extension(); ext != "" {
		return ext
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f.Extension() != ""
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.Extension()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Filename returns basename plus the format's extension.
func (f Format) Filename(basename string) string {
	return basename + "." + f.Extension()
}
