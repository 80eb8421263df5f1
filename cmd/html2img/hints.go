package main

import (
	"errors"
	"strings"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/config"
	"github.com/alnah/go-html2img/internal/hints"
)

// hintFor returns actionable hints for err, or "" when none apply.
func hintFor(err error) string {
	switch {
	case errors.Is(err, html2img.ErrBrowserConnect),
		errors.Is(err, html2img.ErrPageCreate):
		return hints.ForBrowserConnect()
	case errors.Is(err, html2img.ErrExportTimeout):
		return hints.ForTimeout()
	case errors.Is(err, html2img.ErrExportInProgress):
		return hints.ForBusy()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, assets.ErrStyleNotFound):
		var missing *missingStyleError
		if errors.As(err, &missing) {
			return hints.ForStyleNotFound(missing.available)
		}
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, html2img.ErrPresetNotFound):
		return hints.ForPresetNotFound(html2img.DefaultRegistry().Names())
	case errors.Is(err, html2img.ErrS3Config):
		return hints.ForStorage()
	case errors.Is(err, html2img.ErrDelivery):
		return hints.ForOutputDirectory()
	}
	return ""
}

// triedPaths extracts the searched locations from a config lookup error.
func triedPaths(err error) []string {
	msg := err.Error()
	i := strings.Index(msg, "tried ")
	if i < 0 {
		return nil
	}
	return strings.Split(msg[i+len("tried "):], ", ")
}
