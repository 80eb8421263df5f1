package assets

// DefaultSampleName is the starter markup shown by the studio and exported
// when the CLI gets no input.
const DefaultSampleName = "default"

// DefaultStyleName is the built-in style with no visual changes.
const DefaultStyleName = "default"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadSample loads sample markup by name using the default embedded loader.
// Returns ErrSampleNotFound if the sample does not exist.
func LoadSample(name string) (string, error) {
	return defaultLoader.LoadSample(name)
}

// DefaultSample returns the built-in starter markup.
func DefaultSample() string {
	s, err := defaultLoader.LoadSample(DefaultSampleName)
	if err != nil {
		panic("assets: default sample missing from embedded files")
	}
	return s
}
