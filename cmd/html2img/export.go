package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/config"
)

// Sentinel errors for export runs.
var (
	ErrReadInput     = errors.New("failed to read input")
	ErrStudioInit    = errors.New("failed to initialize export studio")
	ErrExportsFailed = errors.New("exports failed")
)

// uploader stores an artifact remotely and returns its object key.
type uploader interface {
	Upload(ctx context.Context, a *html2img.Artifact) (string, error)
}

// Compile-time interface implementation check.
var _ uploader = (*html2img.S3Deliverer)(nil)

// exportParams groups settings shared by every job of a run.
type exportParams struct {
	width    int
	height   int
	format   html2img.Format
	quality  int
	css      string
	toStdout bool
	stdout   io.Writer
	upload   uploader // nil when S3 is disabled
}

// exportResult holds the outcome of a single export.
type exportResult struct {
	Input    string
	Output   string // Written path, or "-" for stdout
	Key      string // S3 object key when uploaded
	Err      error
	Duration time.Duration
}

// runExportCmd parses export flags and runs the export.
func runExportCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runExport(ctx, positional, flags, env)
}

// runExport orchestrates an export run: settings, discovery, the batch and,
// with --watch, re-exports until ctx is canceled.
func runExport(ctx context.Context, positional []string, flags *exportFlags, env *Environment) error {
	cfg, err := loadRunConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	if err := mergeFrameFlags(&flags.frame, cfg); err != nil {
		return err
	}
	mergeMarkupFlags(&flags.markup, cfg)
	mergeBrowserFlags(&flags.browser, cfg)
	mergeStorageFlags(&flags.storage, cfg)
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.workers != 0 {
		cfg.Export.Workers = flags.workers
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

	params, err := resolveExportParams(cfg, flags.storage.enabled, env)
	if err != nil {
		return err
	}

	jobs, err := discoverJobs(positional, discoveryOptions{
		OutputDir: cfg.Output.Dir,
		SourceDir: cfg.Markup.SourceDir,
		Name:      flags.name,
		Filename:  cfg.Export.Filename,
		Sample:    flags.sample,
	}, cfg, env)
	if err != nil {
		return err
	}
	if err := checkJobs(jobs, flags, params); err != nil {
		return err
	}

	size, err := resolveWorkers(cfg.Export.Workers, len(jobs))
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

	pool := env.NewPool(size, settings)
	defer func() { _ = pool.Close() }()

	log.WithField("jobs", len(jobs)).WithField("workers", size).Debug("export started")

	results := exportBatch(ctx, pool, jobs, params)

	if flags.watch {
		printResults(results, flags.common, resultWriter(params, env), env.Stderr)
		return watchJobs(ctx, pool, jobs, params, flags.common, env, log)
	}

	if len(results) == 1 && results[0].Err != nil {
		return fmt.Errorf("exporting %s: %w", results[0].Input, results[0].Err)
	}

	failed := printResults(results, flags.common, resultWriter(params, env), env.Stderr)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrExportsFailed, failed, len(results))
	}
	return nil
}

// resolveExportParams resolves per-run export settings from cfg.
func resolveExportParams(cfg *config.Config, s3Enabled bool, env *Environment) (*exportParams, error) {
	width, height, err := resolveFrame(cfg)
	if err != nil {
		return nil, err
	}
	format, err := html2img.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}
	css, err := resolveCSS(cfg, env)
	if err != nil {
		return nil, err
	}

	params := &exportParams{
		width:    width,
		height:   height,
		format:   format,
		quality:  cfg.Export.Quality,
		css:      css,
		toStdout: cfg.Output.Dir == stdinInput,
		stdout:   env.Stdout,
	}

	s3, err := resolveS3(s3Enabled, cfg)
	if err != nil {
		return nil, err
	}
	if s3 != nil {
		params.upload = s3
	}
	return params, nil
}

// checkJobs rejects flag combinations that cannot apply to jobs.
func checkJobs(jobs []exportJob, flags *exportFlags, params *exportParams) error {
	if len(jobs) > 1 && flags.name != "" {
		return fmt.Errorf("%w: --name needs a single input, got %d", ErrUsage, len(jobs))
	}
	if len(jobs) > 1 && params.toStdout {
		return fmt.Errorf("%w: --output - needs a single input, got %d", ErrUsage, len(jobs))
	}
	if flags.watch && len(watchPaths(jobs)) == 0 {
		return fmt.Errorf("%w: --watch needs input files", ErrUsage)
	}
	return nil
}

// resultWriter is stdout, unless artifacts are streamed there.
func resultWriter(params *exportParams, env *Environment) io.Writer {
	if params.toStdout {
		return env.Stderr
	}
	return env.Stdout
}

// exportBatch processes jobs concurrently using the studio pool.
func exportBatch(ctx context.Context, pool Pool, jobs []exportJob, params *exportParams) []exportResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	results := make([]exportResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			studio, err := pool.Acquire(ctx)
			if err != nil {
				// No studio for this worker, mark remaining jobs as failed
				if ctx.Err() == nil {
					err = fmt.Errorf("%w: %w", ErrStudioInit, err)
				}
				for idx := range queue {
					results[idx] = exportResult{Input: jobs[idx].Input, Err: err}
				}
				return
			}
			defer pool.Release(studio)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = exportResult{
						Input: jobs[idx].Input,
						Err:   ctx.Err(),
					}
					continue
				}
				results[idx] = exportJobWith(ctx, studio, jobs[idx], params)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// exportJobWith renders one job and delivers the artifact.
func exportJobWith(ctx context.Context, studio Renderer, job exportJob, params *exportParams) exportResult {
	start := time.Now()
	result := exportResult{Input: job.Input}

	markup, err := job.load()
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	art, err := studio.Export(ctx, html2img.Request{
		Markup:         markup,
		CSS:            params.css,
		SourceDir:      job.SourceDir,
		Width:          params.width,
		Height:         params.height,
		Format:         params.format,
		QualityPercent: params.quality,
		Basename:       job.Basename,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := deliver(ctx, art, job, params, &result); err != nil {
		result.Err = fmt.Errorf("%w: %w", html2img.ErrDelivery, err)
	}
	result.Duration = time.Since(start)
	return result
}

// deliver writes art to the job's destination, then uploads it when S3 is on.
func deliver(ctx context.Context, art *html2img.Artifact, job exportJob, params *exportParams, result *exportResult) error {
	var primary html2img.Deliverer
	if params.toStdout {
		primary = &html2img.WriterDeliverer{W: params.stdout}
		result.Output = stdinInput
	} else {
		d := html2img.NewDirDeliverer(job.OutputDir)
		d.Written = func(path string) { result.Output = path }
		primary = d
	}

	chain := html2img.MultiDeliverer{primary}
	if params.upload != nil {
		chain = append(chain, html2img.DelivererFunc(func(ctx context.Context, a *html2img.Artifact) error {
			key, err := params.upload.Upload(ctx, a)
			if err != nil {
				return err
			}
			result.Key = key
			return nil
		}))
	}
	return chain.Deliver(ctx, art)
}

// resultSummary holds the count of succeeded and failed exports.
type resultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed exports.
func countResults(results []exportResult) resultSummary {
	var summary resultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs export results and returns the number of failures.
// Successes go to out, failures to errOut.
func printResults(results []exportResult, common commonFlags, out, errOut io.Writer) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(errOut, "FAILED %s: %v\n", r.Input, r.Err)
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(out, "%s -> %s (%v)\n", r.Input, r.Output, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(out, "Created %s\n", r.Output)
		}
		if r.Key != "" {
			fmt.Fprintf(out, "Uploaded %s\n", r.Key)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(out, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
