package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/config"
)

// Sentinel errors for setting resolution.
var (
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// loadRunConfig builds the configuration of one command from the config
// file and HTML2IMG_* variables. Flags are merged by the caller.
func loadRunConfig(configFlag string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig(env.Stderr)

	name := configFlag
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := &config.Config{}
	if name != "" {
		loaded, err := env.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeFrameFlags applies frame flags over cfg (CLI wins).
// A preset and explicit dimensions cannot be combined on the command line.
func mergeFrameFlags(f *frameFlags, cfg *config.Config) error {
	if f.preset != "" && (f.width != 0 || f.height != 0) {
		return fmt.Errorf("%w: --preset cannot be combined with --width/--height", ErrUsage)
	}
	if f.preset != "" {
		cfg.Export.Preset = f.preset
		cfg.Export.Width, cfg.Export.Height = 0, 0
	}
	if f.width != 0 || f.height != 0 {
		cfg.Export.Preset = ""
	}
	if f.width != 0 {
		cfg.Export.Width = f.width
	}
	if f.height != 0 {
		cfg.Export.Height = f.height
	}
	if f.format != "" {
		cfg.Export.Format = f.format
	}
	if f.quality != 0 {
		cfg.Export.Quality = f.quality
	}
	return nil
}

// mergeMarkupFlags applies markup flags over cfg (CLI wins).
func mergeMarkupFlags(f *markupFlags, cfg *config.Config) {
	if f.css != "" {
		cfg.Markup.CSS = f.css
	}
	if f.style != "" {
		cfg.Markup.Style = f.style
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.sourceDir != "" {
		cfg.Markup.SourceDir = f.sourceDir
	}
}

// mergeBrowserFlags applies capture backend flags over cfg (CLI wins).
func mergeBrowserFlags(f *browserFlags, cfg *config.Config) {
	if f.engine != "" {
		cfg.Browser.Engine = f.engine
	}
	if f.document != "" {
		cfg.Document.Engine = f.document
	}
	if f.bin != "" {
		cfg.Browser.Bin = f.bin
	}
	if f.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	if f.timeout != "" {
		cfg.Export.Timeout = f.timeout
	}
}

// mergeStorageFlags applies S3 flags over cfg (CLI wins).
func mergeStorageFlags(f *storageFlags, cfg *config.Config) {
	s3 := &cfg.Storage.S3
	if f.endpoint != "" {
		s3.Endpoint = f.endpoint
	}
	if f.bucket != "" {
		s3.Bucket = f.bucket
	}
	if f.prefix != "" {
		s3.Prefix = f.prefix
	}
}

// fillDefaults sets every unset value to its built-in default.
// Dimensions stay unset when a preset provides them.
func fillDefaults(cfg *config.Config) {
	def := config.DefaultConfig()

	if cfg.Export.Preset == "" {
		if cfg.Export.Width == 0 {
			cfg.Export.Width = def.Export.Width
		}
		if cfg.Export.Height == 0 {
			cfg.Export.Height = def.Export.Height
		}
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = def.Export.Format
	}
	if cfg.Export.Quality == 0 {
		cfg.Export.Quality = def.Export.Quality
	}
	if cfg.Export.Filename == "" {
		cfg.Export.Filename = def.Export.Filename
	}
	if cfg.Browser.Engine == "" {
		cfg.Browser.Engine = def.Browser.Engine
	}
	if cfg.Document.Engine == "" {
		cfg.Document.Engine = def.Document.Engine
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// finalizeConfig fills defaults and validates the merged configuration.
func finalizeConfig(cfg *config.Config) error {
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// resolveFrame returns the export frame of cfg, looking up its preset.
func resolveFrame(cfg *config.Config) (width, height int, err error) {
	if cfg.Export.Preset == "" {
		return cfg.Export.Width, cfg.Export.Height, nil
	}
	p, err := html2img.DefaultRegistry().Select(cfg.Export.Preset)
	if err != nil {
		return 0, 0, err
	}
	return p.Width, p.Height, nil
}

// resolveWorkers validates the worker count and sizes the pool for n jobs.
func resolveWorkers(workers, jobs int) (int, error) {
	if workers < 0 {
		return 0, fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, workers)
	}
	if workers > html2img.MaxPoolSize {
		return 0, fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, workers, html2img.MaxPoolSize)
	}
	size := html2img.ResolvePoolSize(workers)
	if jobs > 0 && size > jobs {
		size = jobs
	}
	return size, nil
}

// resolveCSS returns the named style followed by the CSS file, if any.
func resolveCSS(cfg *config.Config, env *Environment) (string, error) {
	var parts []string

	if cfg.Markup.Style != "" {
		loader, err := env.assetLoader(cfg.Assets.BasePath)
		if err != nil {
			return "", fmt.Errorf("loading assets: %w", err)
		}
		style, err := loader.LoadStyle(cfg.Markup.Style)
		if err != nil {
			return "", withAvailableStyles(err, loader)
		}
		parts = append(parts, style)
	}

	if cfg.Markup.CSS != "" {
		data, err := os.ReadFile(cfg.Markup.CSS) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
		}
		parts = append(parts, string(data))
	}

	return strings.Join(parts, "\n"), nil
}

// missingStyleError carries the styles a loader can offer instead.
type missingStyleError struct {
	err       error
	available []string
}

func (e *missingStyleError) Error() string { return e.err.Error() }
func (e *missingStyleError) Unwrap() error { return e.err }

// withAvailableStyles attaches the loader's style names to a missing style.
func withAvailableStyles(err error, loader assets.AssetLoader) error {
	ls, ok := loader.(interface{ Names(assets.Kind) []string })
	if !ok || !errors.Is(err, assets.ErrStyleNotFound) {
		return err
	}
	return &missingStyleError{err: err, available: ls.Names(assets.KindStyle)}
}

// resolveSample loads a named sample, or the default sample when name is empty.
func resolveSample(name string, cfg *config.Config, env *Environment) (string, error) {
	loader, err := env.assetLoader(cfg.Assets.BasePath)
	if err != nil {
		return "", fmt.Errorf("loading assets: %w", err)
	}
	if name == "" {
		name = assets.DefaultSampleName
	}
	return loader.LoadSample(name)
}

// resolveStudioSettings converts cfg into studio settings.
func resolveStudioSettings(cfg *config.Config) (studioSettings, error) {
	timeout, err := cfg.Export.TimeoutDuration()
	if err != nil {
		return studioSettings{}, err
	}
	return studioSettings{
		Config: html2img.StudioConfig{
			Engine:   cfg.Browser.Engine,
			Document: cfg.Document.Engine,
			Browser: html2img.BrowserConfig{
				Bin:       cfg.Browser.Bin,
				NoSandbox: cfg.Browser.NoSandbox,
				Timeout:   timeout,
			},
		},
		Timeout: timeout,
	}, nil
}

// resolveS3 returns an S3 deliverer when uploads are enabled.
func resolveS3(enabled bool, cfg *config.Config) (*html2img.S3Deliverer, error) {
	if !enabled {
		return nil, nil
	}
	s3 := cfg.Storage.S3
	return html2img.NewS3Deliverer(html2img.S3Config{
		Endpoint:  s3.Endpoint,
		Bucket:    s3.Bucket,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		Region:    s3.Region,
		Prefix:    s3.Prefix,
		Secure:    s3.Secure,
	})
}
