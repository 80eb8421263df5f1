// Package html2img renders HTML/CSS markup in headless Chrome and exports
// the rendered frame as SVG, PNG, JPEG or a single-page PDF.
//
// # Quick Start
//
// Create a studio, export markup, and close when done:
//
//	studio, err := html2img.NewStudio(html2img.StudioConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer studio.Close()
//
//	art, err := studio.Export(ctx, html2img.Request{
//	    Markup: "<h1>Hello</h1>",
//	    Width:  1080,
//	    Height: 1080,
//	    Format: html2img.FormatPNG,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(art.Filename, art.Data, 0644)
//
// # Frames and Presets
//
// The output frame is a width x height box in CSS pixels. Named presets
// cover common social media and device sizes:
//
//	html2img.Reconcile(1200, 630) // "Facebook Post"
//	html2img.Reconcile(500, 500)  // "Custom"
//
// Reconciliation scans social presets before device presets and returns the
// first exact match.
//
// # Export Pipeline
//
// An Exporter drives one export at a time over a CaptureSource:
//
//   - the capture root's margin is forced to 0 and restored afterwards
//   - SVG, PNG and JPEG come straight from the Rasterizer (only JPEG uses quality)
//   - PDF embeds a PNG capture in a page oriented to the frame
//   - the artifact, named export.<ext>, goes to the configured Deliverer
//
// Progress is published on a Reporter as Ready, InProgress, Success or
// Failed. A second export started while one is running is rejected with
// ErrExportInProgress.
//
// # Engines
//
// Two Chrome backends implement Engine: go-rod (default, downloads Chromium
// when none is installed) and chromedp. Set ROD_BROWSER_BIN to use a
// pre-installed browser.
//
// # Parallel Processing
//
// For batch exports, use StudioPool to run one browser per worker:
//
//	pool := html2img.NewStudioPool(html2img.ResolvePoolSize(0), func() (*html2img.Studio, error) {
//	    return html2img.NewStudio(html2img.StudioConfig{})
//	})
//	defer pool.Close()
//
//	studio, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(studio)
//
// # Error Handling
//
// Errors wrap sentinels that can be checked with errors.Is:
//
//	if errors.Is(err, html2img.ErrExportTimeout) {
//	    // retry with a longer timeout
//	}
package html2img
