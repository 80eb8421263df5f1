package assets

import "sort"

// lister is implemented by loaders that can enumerate their assets.
type lister interface {
	Names(k Kind) []string
}

// AssetResolver looks assets up in a stack of loaders, first match wins.
type AssetResolver struct {
	layers []AssetLoader
}

// NewAssetResolver returns a resolver over the built-in assets, with dir
// layered on top when it is not empty.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if dir != "" {
		custom, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, custom)
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.load(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadSample(name string) (string, error) {
	return r.load(func(l AssetLoader) (string, error) { return l.LoadSample(name) })
}

// Names merges the asset names of kind k across layers.
func (r *AssetResolver) Names(k Kind) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range r.layers {
		ls, ok := l.(lister)
		if !ok {
			continue
		}
		for _, n := range ls.Names(k) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Layered reports whether a custom directory sits over the built-ins.
func (r *AssetResolver) Layered() bool {
	return len(r.layers) > 1
}

func (r *AssetResolver) load(fn func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		content, err = fn(l)
		if err == nil || !isNotFound(err) {
			return content, err
		}
	}
	return "", err
}

var _ AssetLoader = (*AssetResolver)(nil)
