package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// readAsset reads the asset name of kind k from fsys.
func readAsset(fsys fs.FS, k Kind, name string) (string, error) {
	if err := CheckName(k, name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(fsys, k.file(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", k.notFound(), name)
		}
		return "", fmt.Errorf("%w: %s %q: %v", ErrAssetRead, k, name, err)
	}
	return string(data), nil
}

// listAssets returns the sorted names of kind k found in fsys.
// Files whose stem is not a valid name are skipped.
func listAssets(fsys fs.FS, k Kind) []string {
	entries, err := fs.ReadDir(fsys, k.dir())
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != k.ext() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), k.ext())
		if CheckName(k, stem) == nil {
			out = append(out, stem)
		}
	}
	sort.Strings(out)
	return out
}
