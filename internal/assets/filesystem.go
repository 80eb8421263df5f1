package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads assets from a directory laid out like the
// built-ins (styles/, samples/).
type FilesystemLoader struct {
	root string
	fsys fs.FS
}

// NewFilesystemLoader opens dir as an asset tree.
// Returns ErrInvalidBasePath unless dir is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidBasePath, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{root: root, fsys: os.DirFS(root)}, nil
}

// Root returns the resolved asset directory.
func (l *FilesystemLoader) Root() string { return l.root }

func (l *FilesystemLoader) LoadStyle(name string) (string, error) {
	return l.load(KindStyle, name)
}

func (l *FilesystemLoader) LoadSample(name string) (string, error) {
	return l.load(KindSample, name)
}

// Names lists the assets of kind k present in the directory.
func (l *FilesystemLoader) Names(k Kind) []string {
	return listAssets(l.fsys, k)
}

func (l *FilesystemLoader) load(k Kind, name string) (string, error) {
	if err := CheckName(k, name); err != nil {
		return "", err
	}
	if err := l.contain(filepath.Join(l.root, filepath.FromSlash(k.file(name)))); err != nil {
		return "", err
	}
	return readAsset(l.fsys, k, name)
}

// contain rejects files whose real path is outside root.
// A missing file passes; the read reports it.
func (l *FilesystemLoader) contain(file string) error {
	resolved, err := filepath.EvalSymlinks(file)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(resolved, l.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, resolved)
	}
	return nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
