package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // Linux PATH_MAX
	MaxURLLength      = 2048 // Browser limit
	MaxNameLength     = 100  // Filename stems, preset and style names
	MaxSecretLength   = 256  // S3 access and secret keys
	MaxAddrLength     = 255  // host:port
	MaxWorkers        = 32   // Upper bound for export.workers
	MaxDimension      = 16384
	DefaultServerAddr = "127.0.0.1:8080"

	// DefaultMaxBodyBytes bounds request bodies accepted by the web studio.
	DefaultMaxBodyBytes = 8 << 20
)

// Accepted log settings.
var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds all configuration for exports and the web studio.
type Config struct {
	Export   ExportConfig   `yaml:"export"`
	Output   OutputConfig   `yaml:"output"`
	Markup   MarkupConfig   `yaml:"markup"`
	Assets   AssetsConfig   `yaml:"assets"`
	Browser  BrowserConfig  `yaml:"browser"`
	Document DocumentConfig `yaml:"document"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// ExportConfig defines the output frame and encoding.
type ExportConfig struct {
	Width    int    `yaml:"width"`    // 0 = default (1080)
	Height   int    `yaml:"height"`   // 0 = default (1080)
	Preset   string `yaml:"preset"`   // Preset name, exclusive with width/height
	Format   string `yaml:"format"`   // svg, png, jpg, pdf (default: svg)
	Quality  int    `yaml:"quality"`  // 1..100, JPEG only (default: 95)
	Filename string `yaml:"filename"` // Artifact stem (default: "export")
	Timeout  string `yaml:"timeout"`  // Go duration (default: "30s")
	Workers  int    `yaml:"workers"`  // 0 = auto
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Empty = current directory
}

// MarkupConfig defines markup preparation options.
type MarkupConfig struct {
	CSS       string `yaml:"css"`       // Path to a CSS file injected before export
	Style     string `yaml:"style"`     // Named style from the assets
	SourceDir string `yaml:"sourceDir"` // Base for relative asset references
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// BrowserConfig selects and configures the capture engine.
type BrowserConfig struct {
	Engine    string `yaml:"engine"` // rod (default) or cdp
	Bin       string `yaml:"bin"`    // Browser executable
	NoSandbox bool   `yaml:"noSandbox"`
}

// DocumentConfig selects the PDF composer.
type DocumentConfig struct {
	Engine string `yaml:"engine"` // fpdf (default) or chrome
}

// StorageConfig defines artifact storage besides the output directory.
type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config locates an S3-compatible bucket.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Secure    bool   `yaml:"secure"`
}

// Enabled reports whether any S3 setting is present.
func (s S3Config) Enabled() bool {
	return s.Endpoint != "" || s.Bucket != ""
}

// ServerConfig defines the web studio listener.
type ServerConfig struct {
	Addr         string `yaml:"addr"`         // Default 127.0.0.1:8080
	Open         bool   `yaml:"open"`         // Open the studio in a browser
	MaxBodyBytes int64  `yaml:"maxBodyBytes"` // 0 = default (8MB)
}

// LogConfig defines diagnostic logging.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error (default: warn)
	Format     string `yaml:"format"` // text or json (default: text)
	File       string `yaml:"file"`   // Rotated log file; empty = stderr
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"markup.css", c.Markup.CSS, MaxPathLength},
		{"markup.style", c.Markup.Style, MaxNameLength},
		{"markup.sourceDir", c.Markup.SourceDir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"storage.s3.endpoint", c.Storage.S3.Endpoint, MaxURLLength},
		{"storage.s3.bucket", c.Storage.S3.Bucket, MaxNameLength},
		{"storage.s3.accessKey", c.Storage.S3.AccessKey, MaxSecretLength},
		{"storage.s3.secretKey", c.Storage.S3.SecretKey, MaxSecretLength},
		{"storage.s3.prefix", c.Storage.S3.Prefix, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"log.file", c.Log.File, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if err := validateChoice("browser.engine", c.Browser.Engine, html2img.Engines); err != nil {
		return err
	}
	if err := validateChoice("document.engine", c.Document.Engine, html2img.DocumentEngines); err != nil {
		return err
	}

	if c.Storage.S3.Enabled() {
		if c.Storage.S3.Endpoint == "" {
			return fmt.Errorf("%w: storage.s3.endpoint: required when a bucket is set", ErrInvalidValue)
		}
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("%w: storage.s3.bucket: required when an endpoint is set", ErrInvalidValue)
		}
	}

	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes: must not be negative, got %d", ErrInvalidValue, c.Server.MaxBodyBytes)
	}

	if err := validateChoice("log.level", c.Log.Level, logLevels); err != nil {
		return err
	}
	if err := validateChoice("log.format", c.Log.Format, logFormats); err != nil {
		return err
	}
	for name, v := range map[string]int{
		"log.maxSizeMB":  c.Log.MaxSizeMB,
		"log.maxBackups": c.Log.MaxBackups,
		"log.maxAgeDays": c.Log.MaxAgeDays,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s: must not be negative, got %d", ErrInvalidValue, name, v)
		}
	}

	return nil
}

func (c *Config) validateExport() error {
	e := c.Export

	if e.Width < 0 || e.Width > MaxDimension {
		return fmt.Errorf("%w: export.width: must be between 1 and %d, got %d", ErrInvalidValue, MaxDimension, e.Width)
	}
	if e.Height < 0 || e.Height > MaxDimension {
		return fmt.Errorf("%w: export.height: must be between 1 and %d, got %d", ErrInvalidValue, MaxDimension, e.Height)
	}

	if err := validateFieldLength("export.preset", e.Preset, MaxNameLength); err != nil {
		return err
	}
	if e.Preset != "" {
		if e.Width != 0 || e.Height != 0 {
			return fmt.Errorf("%w: export.preset: cannot be combined with export.width/height", ErrInvalidValue)
		}
		if _, err := html2img.DefaultRegistry().Select(e.Preset); err != nil {
			return fmt.Errorf("%w: export.preset: %v", ErrInvalidValue, err)
		}
	}

	if e.Format != "" {
		if _, err := html2img.ParseFormat(e.Format); err != nil {
			return fmt.Errorf("%w: export.format: %v", ErrInvalidValue, err)
		}
	}

	if e.Quality != 0 && (e.Quality < html2img.MinQualityPercent || e.Quality > html2img.MaxQualityPercent) {
		return fmt.Errorf("%w: export.quality: must be between %d and %d, got %d",
			ErrInvalidValue, html2img.MinQualityPercent, html2img.MaxQualityPercent, e.Quality)
	}

	if err := validateFieldLength("export.filename", e.Filename, MaxNameLength); err != nil {
		return err
	}
	if strings.ContainsAny(e.Filename, `/\`) {
		return fmt.Errorf("%w: export.filename: must be a name, not a path: %q", ErrInvalidValue, e.Filename)
	}

	if _, err := c.Export.TimeoutDuration(); err != nil {
		return err
	}

	if e.Workers < 0 || e.Workers > MaxWorkers {
		return fmt.Errorf("%w: export.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, e.Workers)
	}

	return nil
}

// TimeoutDuration parses export.timeout. Empty returns 0 (use the default).
func (e ExportConfig) TimeoutDuration() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: export.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: export.timeout: must be positive, got %s", ErrInvalidValue, e.Timeout)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateChoice accepts empty or one of choices, case-insensitively.
func validateChoice(fieldName, value string, choices []string) error {
	if value == "" || slices.Contains(choices, strings.ToLower(value)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(choices, ", "))
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			Width:    html2img.DefaultWidth,
			Height:   html2img.DefaultHeight,
			Format:   html2img.FormatSVG.Extension(),
			Quality:  html2img.DefaultQualityPercent,
			Filename: html2img.DefaultBasename,
		},
		Browser:  BrowserConfig{Engine: html2img.EngineRod},
		Document: DocumentConfig{Engine: html2img.DocumentFPDF},
		Server:   ServerConfig{Addr: DefaultServerAddr, MaxBodyBytes: DefaultMaxBodyBytes},
		Log:      LogConfig{Level: "warn", Format: "text"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-html2img/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-html2img", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
