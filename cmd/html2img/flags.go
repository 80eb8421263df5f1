package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// frameFlags holds the output frame and encoding flags.
type frameFlags struct {
	width   int
	height  int
	preset  string
	format  string
	quality int
}

// markupFlags holds markup preparation flags.
type markupFlags struct {
	css       string // CSS file injected into every render
	style     string // Embedded or custom style name
	assetPath string // Override asset directory
	sourceDir string // Base for relative references (default: input's directory)
}

// browserFlags holds capture backend flags.
type browserFlags struct {
	engine    string
	document  string
	bin       string
	noSandbox bool
	timeout   string
}

// storageFlags holds S3 upload flags.
type storageFlags struct {
	enabled  bool
	endpoint string
	bucket   string
	prefix   string
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common  commonFlags
	output  string
	name    string
	sample  string
	workers int
	watch   bool
	metrics bool
	frame   frameFlags
	markup  markupFlags
	browser browserFlags
	storage storageFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	open    bool
	name    string
	sample  string
	metrics bool
	markup  markupFlags
	browser browserFlags
	storage storageFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addFrameFlags adds frame and encoding flags to a FlagSet.
func addFrameFlags(fs *flag.FlagSet, f *frameFlags) {
	fs.IntVarP(&f.width, "width", "W", 0, "frame width in px (default 1080)")
	fs.IntVarP(&f.height, "height", "H", 0, "frame height in px (default 1080)")
	fs.StringVar(&f.preset, "preset", "", "frame preset name, e.g. \"Instagram Story\"")
	fs.StringVarP(&f.format, "format", "f", "", "output format: svg, png, jpg, pdf")
	fs.IntVar(&f.quality, "quality", 0, "JPEG quality 1-100 (default 95)")
}

// addMarkupFlags adds markup preparation flags to a FlagSet.
func addMarkupFlags(fs *flag.FlagSet, f *markupFlags) {
	fs.StringVar(&f.css, "css", "", "CSS file injected before capture")
	fs.StringVar(&f.style, "style", "", "named CSS style from the assets")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.sourceDir, "source-dir", "", "base directory for relative references")
}

// addBrowserFlags adds capture backend flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVar(&f.engine, "engine", "", "capture engine: rod, cdp")
	fs.StringVar(&f.document, "document", "", "PDF composer: fpdf, chrome")
	fs.StringVar(&f.bin, "browser-bin", "", "Chrome/Chromium executable")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g., 30s, 2m)")
}

// addStorageFlags adds S3 upload flags to a FlagSet.
func addStorageFlags(fs *flag.FlagSet, f *storageFlags) {
	fs.BoolVar(&f.enabled, "s3", false, "also upload artifacts to S3")
	fs.StringVar(&f.endpoint, "s3-endpoint", "", "S3 endpoint (host:port)")
	fs.StringVar(&f.bucket, "s3-bucket", "", "S3 bucket")
	fs.StringVar(&f.prefix, "s3-prefix", "", "S3 key prefix")
}

// newExportFlagSet registers every export flag on a fresh FlagSet.
// Shared by parsing and completion so both see the same flags.
func newExportFlagSet() (*flag.FlagSet, *exportFlags) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	f := &exportFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory, or - for stdout")
	fs.StringVar(&f.name, "name", "", "artifact filename stem (single input only)")
	fs.StringVar(&f.sample, "sample", "", "export a named sample when no input is given")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel studios (0 = auto)")
	fs.BoolVar(&f.watch, "watch", false, "re-export inputs when they change")
	fs.BoolVar(&f.metrics, "metrics", false, "print export metrics to stderr on exit")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addFrameFlags(fs, &f.frame)
	addMarkupFlags(fs, &f.markup)
	addBrowserFlags(fs, &f.browser)
	addStorageFlags(fs, &f.storage)

	return fs, f
}

// newServeFlagSet registers every serve flag on a fresh FlagSet.
func newServeFlagSet() (*flag.FlagSet, *serveFlags) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default 127.0.0.1:8080)")
	fs.BoolVar(&f.open, "open", false, "open the studio in the default browser")
	fs.StringVar(&f.name, "name", "", "artifact filename stem")
	fs.StringVar(&f.sample, "sample", "", "initial editor sample")
	fs.BoolVar(&f.metrics, "metrics", false, "print export metrics to stderr on exit")

	addCommonFlags(fs, &f.common)
	addMarkupFlags(fs, &f.markup)
	addBrowserFlags(fs, &f.browser)
	addStorageFlags(fs, &f.storage)

	return fs, f
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	fs, f := newExportFlagSet()
	fs.Usage = func() { printExportUsage(stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs, f := newServeFlagSet()
	fs.Usage = func() { printServeUsage(stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	return f, nil
}

// parseFlagSet parses args, leaving usage printing to fs.Usage.
// A help request returns flag.ErrHelp unwrapped.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}
