package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrSampleNotFound   = errors.New("sample not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("reading asset")

	// ErrPathTraversal is returned when a file resolves outside the asset
	// directory, e.g. through a symlink.
	ErrPathTraversal = errors.New("asset path escapes base directory")
)

// isNotFound reports whether err means the asset is absent from a layer.
func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrSampleNotFound)
}
