package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2img/internal/hints"
	"github.com/alnah/go-html2img/internal/server"
)

// runServeCmd runs the web studio until ctx is canceled.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := loadRunConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	mergeMarkupFlags(&flags.markup, cfg)
	mergeBrowserFlags(&flags.browser, cfg)
	mergeStorageFlags(&flags.storage, cfg)
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.open {
		cfg.Server.Open = true
	}
	if flags.name != "" {
		cfg.Export.Filename = flags.name
	}
	if err := finalizeConfig(cfg); err != nil {
		return err
	}

	log, closer, err := newLogger(cfg.Log, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if !flags.common.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	css, err := resolveCSS(cfg, env)
	if err != nil {
		return err
	}
	markup, err := resolveSample(flags.sample, cfg, env)
	if err != nil {
		return err
	}

	ms, err := newMetricsSetup(flags.metrics, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = ms.Shutdown(context.Background()) }()

	settings, err := resolveStudioSettings(cfg)
	if err != nil {
		return err
	}
	settings.Logger = log
	settings.Metrics = ms.Metrics()

	s3, err := resolveS3(flags.storage.enabled, cfg)
	if err != nil {
		return err
	}
	if s3 != nil {
		s3.Uploaded = func(key string) { log.WithField("key", key).Info("artifact uploaded") }
		settings.Deliverer = s3
	}

	studio, err := env.NewStudio(settings)
	if err != nil {
		return err
	}
	defer func() { _ = studio.Close() }()

	srv := server.New(studio, server.Options{
		Addr:         cfg.Server.Addr,
		Open:         cfg.Server.Open,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Markup:       markup,
		CSS:          css,
		SourceDir:    cfg.Markup.SourceDir,
		Basename:     cfg.Export.Filename,
		Logger:       log,
		OnListen: func(url string) {
			if !flags.common.quiet {
				fmt.Fprintf(env.Stdout, "Studio running at %s (Ctrl+C to stop)\n", url)
			}
		},
	})

	if err := srv.Run(ctx); err != nil {
		if errors.Is(err, server.ErrListen) {
			return fmt.Errorf("%w%s", err, hints.ForListen(cfg.Server.Addr))
		}
		return err
	}
	return nil
}
