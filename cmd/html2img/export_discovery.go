package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/config"
	"github.com/alnah/go-html2img/internal/fileutil"
)

// stdinInput names standard input as an input, and stdout as an output.
const stdinInput = "-"

// Sentinel errors for input discovery.
var (
	ErrNoInput          = errors.New("no input files found")
	ErrInvalidExtension = errors.New("file must have .html or .htm extension")
)

// exportJob is one markup source to export.
type exportJob struct {
	Input     string // Display name: path, "-" or "sample:<name>"
	Path      string // File to read per export; empty when Markup is preloaded
	Markup    string // Preloaded stdin or sample content
	SourceDir string // Base for relative references
	Basename  string // Artifact filename stem
	OutputDir string // Destination directory
}

// load returns the job's markup, reading its file when it has one.
func (j exportJob) load() (string, error) {
	if j.Path == "" {
		return j.Markup, nil
	}
	data, err := os.ReadFile(j.Path) // #nosec G304 -- discovered path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}

// discoveryOptions controls how inputs map to jobs.
type discoveryOptions struct {
	OutputDir string // Empty writes next to each input file
	SourceDir string // Empty uses each input file's directory
	Name      string // Explicit stem from --name, applies to every input
	Filename  string // Stem for stdin and samples
	Sample    string // Sample exported when there are no inputs
}

// discoverJobs turns positional arguments into export jobs.
// No arguments exports a sample; "-" reads stdin once; directories are
// walked for HTML files, mirroring their layout under OutputDir.
func discoverJobs(args []string, opts discoveryOptions, cfg *config.Config, env *Environment) ([]exportJob, error) {
	if len(args) == 0 {
		name := opts.Sample
		if name == "" {
			name = assets.DefaultSampleName
		}
		markup, err := resolveSample(name, cfg, env)
		if err != nil {
			return nil, err
		}
		return []exportJob{{
			Input:     "sample:" + name,
			Markup:    markup,
			SourceDir: opts.SourceDir,
			Basename:  opts.Filename,
			OutputDir: outputDirOr(opts.OutputDir, "."),
		}}, nil
	}

	var jobs []exportJob
	stdinRead := false
	for _, arg := range args {
		if arg == stdinInput {
			if stdinRead {
				return nil, fmt.Errorf("%w: stdin given more than once", ErrUsage)
			}
			stdinRead = true
			job, err := stdinJob(env.Stdin, opts)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
			continue
		}

		found, err := discoverPath(arg, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, found...)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoInput, args)
	}
	return jobs, nil
}

// stdinJob reads all of r into a preloaded job.
func stdinJob(r io.Reader, opts discoveryOptions) (exportJob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return exportJob{}, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
	}
	return exportJob{
		Input:     stdinInput,
		Markup:    string(data),
		SourceDir: opts.SourceDir,
		Basename:  opts.Filename,
		OutputDir: outputDirOr(opts.OutputDir, "."),
	}, nil
}

// discoverPath returns the job for a file, or one job per HTML file under a
// directory.
func discoverPath(inputPath string, opts discoveryOptions) ([]exportJob, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", inputPath, err)
	}

	if !info.IsDir() {
		if !fileutil.IsHTMLFile(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		return []exportJob{fileJob(inputPath, "", opts)}, nil
	}

	var jobs []exportJob
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsHTMLFile(path) {
			return nil
		}
		jobs = append(jobs, fileJob(path, inputPath, opts))
		return nil
	})
	return jobs, err
}

// fileJob builds the job for one HTML file found under baseDir (empty for a
// file given directly).
func fileJob(path, baseDir string, opts discoveryOptions) exportJob {
	stem := opts.Name
	if stem == "" {
		stem = fileutil.Stem(path)
	}

	sourceDir := opts.SourceDir
	if sourceDir == "" {
		sourceDir = filepath.Dir(path)
	}

	return exportJob{
		Input:     path,
		Path:      path,
		SourceDir: sourceDir,
		Basename:  fileutil.SanitizeBasename(stem, html2img.DefaultBasename),
		OutputDir: resolveOutputDir(path, opts.OutputDir, baseDir),
	}
}

// resolveOutputDir determines where the artifact of inputPath is written.
func resolveOutputDir(inputPath, outputDir, baseDir string) string {
	if outputDir == "" {
		return filepath.Dir(inputPath)
	}
	if baseDir != "" {
		if rel, err := filepath.Rel(baseDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel))
		}
	}
	return outputDir
}

// outputDirOr returns dir, or def when dir is empty.
func outputDirOr(dir, def string) string {
	if dir == "" {
		return def
	}
	return dir
}
