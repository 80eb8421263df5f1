package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/server"
)

// Renderer is the export side of a studio.
type Renderer interface {
	Export(ctx context.Context, req html2img.Request) (*html2img.Artifact, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*html2img.Studio)(nil)

// Pool abstracts studio pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Renderer, error)
	Release(Renderer)
	Size() int
	Close() error
}

// serveStudio is a studio the HTTP server can drive and the CLI can close.
type serveStudio interface {
	server.Studio
	Close() error
}

// studioSettings groups what every studio of one run is built with.
type studioSettings struct {
	Config    html2img.StudioConfig
	Timeout   time.Duration
	Logger    *logrus.Logger
	Metrics   *html2img.Metrics
	Deliverer html2img.Deliverer // serve only; the batch delivers per file
}

// options converts the settings to exporter options.
func (s studioSettings) options() []html2img.Option {
	var opts []html2img.Option
	if s.Timeout > 0 {
		opts = append(opts, html2img.WithTimeout(s.Timeout))
	}
	if s.Logger != nil {
		opts = append(opts, html2img.WithLogger(s.Logger))
	}
	if s.Metrics != nil {
		opts = append(opts, html2img.WithMetrics(s.Metrics))
	}
	if s.Deliverer != nil {
		opts = append(opts, html2img.WithDeliverer(s.Deliverer))
	}
	return opts
}

// poolAdapter exposes an html2img.StudioPool as a Pool.
type poolAdapter struct {
	pool *html2img.StudioPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

// newStudioPool creates a lazily filled pool of Chrome-backed studios.
func newStudioPool(size int, s studioSettings) Pool {
	return &poolAdapter{pool: html2img.NewStudioPool(size, func() (*html2img.Studio, error) {
		return html2img.NewStudio(s.Config, s.options()...)
	})}
}

// newServeStudio creates the single studio behind the HTTP server.
func newServeStudio(s studioSettings) (serveStudio, error) {
	studio, err := html2img.NewStudio(s.Config, s.options()...)
	if err != nil {
		return nil, err
	}
	return studio, nil
}

func (a *poolAdapter) Acquire(ctx context.Context) (Renderer, error) {
	s, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Release returns r to the pool. Passing a Renderer the pool did not hand
// out is a programmer error.
func (a *poolAdapter) Release(r Renderer) {
	s, ok := r.(*html2img.Studio)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", r))
	}
	a.pool.Release(s)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
