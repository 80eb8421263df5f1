// Package assets provides the stylesheets, sample markup and web studio page
// the exporter ships with.
//
// Assets come in two kinds, styles ({name}.css under styles/) and samples
// ({name}.html under samples/). Both are read through an fs.FS:
//
//	EmbeddedLoader    built-in files compiled into the binary
//	FilesystemLoader  a directory on disk with the same layout
//	AssetResolver     layers a directory over the built-ins
//
// A resolver only falls through to the next layer when an asset is missing.
// Invalid names and read failures stop the lookup.
//
// Names are restricted to letters, digits, '-' and '_'. FilesystemLoader
// also refuses files whose real path leaves the base directory.
package assets
