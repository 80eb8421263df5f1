package assets

import (
	"embed"
)

//go:embed styles/*.css samples/*.html
var builtin embed.FS

//go:embed web/index.html
var indexPage []byte

// EmbeddedLoader reads the assets compiled into the binary.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (*EmbeddedLoader) LoadStyle(name string) (string, error) {
	return readAsset(builtin, KindStyle, name)
}

func (*EmbeddedLoader) LoadSample(name string) (string, error) {
	return readAsset(builtin, KindSample, name)
}

// Names lists the built-in assets of kind k.
func (*EmbeddedLoader) Names(k Kind) []string {
	return listAssets(builtin, k)
}

// StyleNames lists the built-in styles in sorted order.
func StyleNames() []string {
	return listAssets(builtin, KindStyle)
}

// SampleNames lists the built-in samples in sorted order.
func SampleNames() []string {
	return listAssets(builtin, KindSample)
}

// IndexPage returns the web studio page.
func IndexPage() []byte {
	return indexPage
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
