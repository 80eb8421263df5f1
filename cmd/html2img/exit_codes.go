package main

import (
	"errors"
	"os"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/config"
	"github.com/alnah/go-html2img/internal/server"
)

// Exit codes for the html2img CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every export succeeded
	ExitGeneral = 1 // General/unexpected error, or some exports failed
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Input not found, output not writable, upload failed
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitClasses maps sentinel errors to exit codes. The first class with a
// matching sentinel wins, so browser failures outrank the errors they cause.
var exitClasses = []struct {
	code int
	errs []error
}{
	{ExitBrowser, []error{
		html2img.ErrBrowserConnect,
		html2img.ErrPageCreate,
		html2img.ErrPageLoad,
		html2img.ErrCaptureUnavailable,
	}},
	{ExitIO, []error{
		os.ErrNotExist,
		os.ErrPermission,
		ErrReadInput,
		ErrReadCSS,
		ErrNoInput,
		html2img.ErrDelivery,
		server.ErrListen,
	}},
	{ExitUsage, []error{
		ErrNoCommand,
		ErrUnknownCommand,
		ErrUsage,
		ErrInvalidExtension,
		ErrInvalidWorkerCount,
		ErrUnsupportedShell,
		config.ErrConfigNotFound,
		config.ErrConfigParse,
		config.ErrFieldTooLong,
		config.ErrInvalidValue,
		config.ErrEmptyConfig,
		config.ErrConfigTooLarge,
		html2img.ErrEmptyMarkup,
		html2img.ErrInvalidDimensions,
		html2img.ErrInvalidQuality,
		html2img.ErrUnknownFormat,
		html2img.ErrPresetNotFound,
		html2img.ErrPresetShadowed,
		html2img.ErrUnknownEngine,
		html2img.ErrUnknownDocumentEngine,
		html2img.ErrS3Config,
		assets.ErrStyleNotFound,
		assets.ErrSampleNotFound,
		assets.ErrInvalidAssetName,
		assets.ErrPathTraversal,
	}},
}

// exitCodeFor returns the exit code for err. Callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	for _, class := range exitClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}
	return ExitGeneral
}
