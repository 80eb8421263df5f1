// Package markup prepares user markup for loading into a capture surface.
//
// Preparation runs two passes over the pasted document:
//   - user CSS is injected as a <style> block
//   - relative img, link and a references are rewritten to file:// URLs
//     under the source directory, so assets next to an input file resolve
//     even though the document is loaded without a base URL
//
// Rendering itself happens in the root html2img package through headless
// Chrome. This package never executes or validates the markup.
package markup
