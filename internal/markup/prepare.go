package markup

import (
	"context"
	"fmt"
)

// Options controls Prepare.
type Options struct {
	// CSS is appended as a <style> block. Empty skips injection.
	CSS string

	// SourceDir resolves relative asset references. Empty skips rewriting.
	SourceDir string
}

// Preparer runs the preparation passes over markup.
type Preparer struct {
	css CSSInjector
}

// NewPreparer returns a Preparer using the default CSS injector.
func NewPreparer() *Preparer {
	return &Preparer{css: &CSSInjection{}}
}

// Prepare rewrites relative paths, then injects CSS.
func (p *Preparer) Prepare(ctx context.Context, content string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := RewriteRelativePaths(content, opts.SourceDir)
	if err != nil {
		return "", fmt.Errorf("rewriting relative paths: %w", err)
	}

	out = p.css.InjectCSS(ctx, out, opts.CSS)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return out, nil
}
