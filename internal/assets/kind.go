package assets

import (
	"fmt"
	"path"
)

// MaxNameLength bounds asset names.
const MaxNameLength = 64

// Kind selects a family of assets.
type Kind int

const (
	KindStyle Kind = iota
	KindSample
)

func (k Kind) String() string {
	if k == KindSample {
		return "sample"
	}
	return "style"
}

func (k Kind) dir() string {
	if k == KindSample {
		return "samples"
	}
	return "styles"
}

func (k Kind) ext() string {
	if k == KindSample {
		return ".html"
	}
	return ".css"
}

func (k Kind) notFound() error {
	if k == KindSample {
		return ErrSampleNotFound
	}
	return ErrStyleNotFound
}

// file returns the slash-separated path of name inside an asset tree.
func (k Kind) file(name string) string {
	return path.Join(k.dir(), name+k.ext())
}

// AssetLoader loads stylesheets and sample markup by name, without extension.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadSample(name string) (string, error)
}

// CheckName validates an asset name of kind k.
func CheckName(k Kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidAssetName, k)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %s name longer than %d", ErrInvalidAssetName, k, MaxNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %s %q", ErrInvalidAssetName, k, name)
		}
	}
	return nil
}
