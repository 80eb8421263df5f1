package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration loading, assets, and studio creation.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Stdin       io.Reader
	AssetLoader assets.AssetLoader // Used when no custom asset path is configured

	LoadConfig func(nameOrPath string) (*config.Config, error)
	NewPool    func(size int, s studioSettings) Pool
	NewStudio  func(s studioSettings) (serveStudio, error)
}

// DefaultEnv returns the production environment with embedded assets and
// Chrome-backed studios.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
		AssetLoader: assets.NewEmbeddedLoader(),
		LoadConfig:  config.LoadConfig,
		NewPool:     newStudioPool,
		NewStudio:   newServeStudio,
	}
}

// assetLoader returns a loader for basePath, or the environment's loader when
// basePath is empty.
func (e *Environment) assetLoader(basePath string) (assets.AssetLoader, error) {
	if basePath == "" {
		return e.AssetLoader, nil
	}
	r, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, err
	}
	return r, nil
}
