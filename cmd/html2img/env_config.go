package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-html2img/internal/config"
)

// envPrefix namespaces every environment variable the CLI reads.
const envPrefix = "HTML2IMG_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // HTML2IMG_CONFIG: config file name or path
	Format     string // HTML2IMG_FORMAT: svg, png, jpg, pdf
	Preset     string // HTML2IMG_PRESET: preset name
	Width      int    // HTML2IMG_WIDTH: frame width in px
	Height     int    // HTML2IMG_HEIGHT: frame height in px
	Quality    int    // HTML2IMG_QUALITY: 1..100
	Timeout    string // HTML2IMG_TIMEOUT: export timeout

	// Tier 2 - I/O and browser
	OutputDir  string // HTML2IMG_OUTPUT_DIR: output directory
	Style      string // HTML2IMG_STYLE: embedded style name
	Workers    int    // HTML2IMG_WORKERS: parallel studios
	Engine     string // HTML2IMG_ENGINE: rod or cdp
	BrowserBin string // HTML2IMG_BROWSER_BIN: browser executable
	NoSandbox  bool   // HTML2IMG_NO_SANDBOX: "1" disables the Chrome sandbox
	Addr       string // HTML2IMG_ADDR: studio listen address

	// Tier 3 - Storage and logging
	S3Endpoint  string // HTML2IMG_S3_ENDPOINT
	S3Bucket    string // HTML2IMG_S3_BUCKET
	S3AccessKey string // HTML2IMG_S3_ACCESS_KEY
	S3SecretKey string // HTML2IMG_S3_SECRET_KEY
	S3Region    string // HTML2IMG_S3_REGION
	S3Prefix    string // HTML2IMG_S3_PREFIX
	S3Secure    bool   // HTML2IMG_S3_SECURE: "1" or "true"
	LogLevel    string // HTML2IMG_LOG_LEVEL
	LogFormat   string // HTML2IMG_LOG_FORMAT
	LogFile     string // HTML2IMG_LOG_FILE
}

// knownEnvVars lists valid HTML2IMG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"HTML2IMG_CONFIG":  true,
	"HTML2IMG_FORMAT":  true,
	"HTML2IMG_PRESET":  true,
	"HTML2IMG_WIDTH":   true,
	"HTML2IMG_HEIGHT":  true,
	"HTML2IMG_QUALITY": true,
	"HTML2IMG_TIMEOUT": true,
	// Tier 2 - I/O and browser
	"HTML2IMG_OUTPUT_DIR":  true,
	"HTML2IMG_STYLE":       true,
	"HTML2IMG_WORKERS":     true,
	"HTML2IMG_ENGINE":      true,
	"HTML2IMG_BROWSER_BIN": true,
	"HTML2IMG_NO_SANDBOX":  true,
	"HTML2IMG_ADDR":        true,
	"HTML2IMG_CONTAINER":   true, // read by doctor
	// Tier 3 - Storage and logging
	"HTML2IMG_S3_ENDPOINT":   true,
	"HTML2IMG_S3_BUCKET":     true,
	"HTML2IMG_S3_ACCESS_KEY": true,
	"HTML2IMG_S3_SECRET_KEY": true,
	"HTML2IMG_S3_REGION":     true,
	"HTML2IMG_S3_PREFIX":     true,
	"HTML2IMG_S3_SECURE":     true,
	"HTML2IMG_LOG_LEVEL":     true,
	"HTML2IMG_LOG_FORMAT":    true,
	"HTML2IMG_LOG_FILE":      true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers are ignored with a warning on w.
func loadEnvConfig(w io.Writer) *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("HTML2IMG_CONFIG"),
		Format:     os.Getenv("HTML2IMG_FORMAT"),
		Preset:     os.Getenv("HTML2IMG_PRESET"),
		Timeout:    os.Getenv("HTML2IMG_TIMEOUT"),
		// Tier 2
		OutputDir:  os.Getenv("HTML2IMG_OUTPUT_DIR"),
		Style:      os.Getenv("HTML2IMG_STYLE"),
		Engine:     os.Getenv("HTML2IMG_ENGINE"),
		BrowserBin: os.Getenv("HTML2IMG_BROWSER_BIN"),
		NoSandbox:  os.Getenv("HTML2IMG_NO_SANDBOX") == "1",
		Addr:       os.Getenv("HTML2IMG_ADDR"),
		// Tier 3
		S3Endpoint:  os.Getenv("HTML2IMG_S3_ENDPOINT"),
		S3Bucket:    os.Getenv("HTML2IMG_S3_BUCKET"),
		S3AccessKey: os.Getenv("HTML2IMG_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("HTML2IMG_S3_SECRET_KEY"),
		S3Region:    os.Getenv("HTML2IMG_S3_REGION"),
		S3Prefix:    os.Getenv("HTML2IMG_S3_PREFIX"),
		S3Secure:    parseEnvBool(os.Getenv("HTML2IMG_S3_SECURE")),
		LogLevel:    os.Getenv("HTML2IMG_LOG_LEVEL"),
		LogFormat:   os.Getenv("HTML2IMG_LOG_FORMAT"),
		LogFile:     os.Getenv("HTML2IMG_LOG_FILE"),
	}

	cfg.Width = envInt(w, "HTML2IMG_WIDTH")
	cfg.Height = envInt(w, "HTML2IMG_HEIGHT")
	cfg.Quality = envInt(w, "HTML2IMG_QUALITY")
	cfg.Workers = envInt(w, "HTML2IMG_WORKERS")

	return cfg
}

// envInt parses a positive integer variable. Unset, malformed or
// non-positive values yield 0.
func envInt(w io.Writer, name string) int {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		fmt.Fprintf(w, "warning: ignoring %s=%q (expected a positive integer)\n", name, raw)
		return 0
	}
	return n
}

// parseEnvBool accepts "1" and "true" (case-insensitive).
func parseEnvBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2IMG_* variables.
// Helps catch typos like HTML2IMG_FROMAT instead of HTML2IMG_FORMAT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment variables over the config file.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Frame: a preset and explicit dimensions exclude each other,
	// so whichever the environment sets replaces the other from the file.
	if env.Preset != "" {
		cfg.Export.Preset = env.Preset
		cfg.Export.Width, cfg.Export.Height = 0, 0
	}
	if env.Width != 0 || env.Height != 0 {
		cfg.Export.Preset = ""
	}
	if env.Width != 0 {
		cfg.Export.Width = env.Width
	}
	if env.Height != 0 {
		cfg.Export.Height = env.Height
	}
	if env.Format != "" {
		cfg.Export.Format = env.Format
	}
	if env.Quality != 0 {
		cfg.Export.Quality = env.Quality
	}
	if env.Timeout != "" {
		cfg.Export.Timeout = env.Timeout
	}

	// Tier 2 - I/O and browser
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Style != "" {
		cfg.Markup.Style = env.Style
	}
	if env.Workers != 0 {
		cfg.Export.Workers = env.Workers
	}
	if env.Engine != "" {
		cfg.Browser.Engine = env.Engine
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}

	// Tier 3 - Storage
	s3 := &cfg.Storage.S3
	if env.S3Endpoint != "" {
		s3.Endpoint = env.S3Endpoint
	}
	if env.S3Bucket != "" {
		s3.Bucket = env.S3Bucket
	}
	if env.S3AccessKey != "" {
		s3.AccessKey = env.S3AccessKey
	}
	if env.S3SecretKey != "" {
		s3.SecretKey = env.S3SecretKey
	}
	if env.S3Region != "" {
		s3.Region = env.S3Region
	}
	if env.S3Prefix != "" {
		s3.Prefix = env.S3Prefix
	}
	if env.S3Secure {
		s3.Secure = true
	}

	// Tier 3 - Logging
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
}
