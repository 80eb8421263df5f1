package html2img

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-html2img/internal/fileutil"
)

// Compile-time interface checks.
var (
	_ Deliverer = (*DirDeliverer)(nil)
	_ Deliverer = (*WriterDeliverer)(nil)
	_ Deliverer = (MultiDeliverer)(nil)
	_ Deliverer = (DelivererFunc)(nil)
)

// Output permissions.
const (
	outputFilePerm = 0o644
	outputDirPerm  = 0o750
)

// DirDeliverer writes artifacts into a directory, replacing existing files.
type DirDeliverer struct {
	Dir string

	// Written receives the path of every delivered file when set.
	Written func(path string)
}

// NewDirDeliverer returns a deliverer writing into dir.
func NewDirDeliverer(dir string) *DirDeliverer {
	return &DirDeliverer{Dir: dir}
}

// Deliver writes a.Data to Dir/a.Filename atomically.
func (d *DirDeliverer) Deliver(ctx context.Context, a *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.ValidateFilename(a.Filename); err != nil {
		return err
	}

	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, outputDirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, a.Filename)
	if err := fileutil.WriteFileAtomic(path, a.Data, outputFilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if d.Written != nil {
		d.Written(path)
	}
	return nil
}

// WriterDeliverer streams artifact bytes to an io.Writer (e.g. stdout).
type WriterDeliverer struct {
	W io.Writer
}

// Deliver copies a.Data to W.
func (d *WriterDeliverer) Deliver(ctx context.Context, a *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.W.Write(a.Data); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// MultiDeliverer delivers to each deliverer in order, stopping at the first failure.
type MultiDeliverer []Deliverer

// Deliver calls every deliverer in order.
func (m MultiDeliverer) Deliver(ctx context.Context, a *Artifact) error {
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Deliver(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
