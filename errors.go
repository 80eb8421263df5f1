package html2img

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkup        = errors.New("markup content cannot be empty")
	ErrCaptureUnavailable = errors.New("capture source unavailable")
	ErrEncoding           = errors.New("encoding failed")
	ErrDelivery           = errors.New("delivery failed")
	ErrExportTimeout      = errors.New("timed out")
	ErrExportInProgress   = errors.New("export already in progress")
	ErrUnsupportedNode    = errors.New("unsupported capture node")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Export options validation errors.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidQuality    = errors.New("invalid quality")
	ErrUnknownFormat     = errors.New("unknown export format")

	// Preset errors.
	ErrPresetNotFound = errors.New("preset not found")
	ErrPresetShadowed = errors.New("preset shadowed by an earlier preset with the same dimensions")

	// Engine selection errors.
	ErrUnknownEngine = errors.New("unknown engine")
)
