package main

// Notes:
// - loadEnvConfig: we test variables across the three tiers and that
//   malformed integers are ignored with a warning.
// - warnUnknownEnvVars: we test typo detection and that known vars don't warn.
// - applyEnvConfig: we test that set variables override the config file and
//   that a preset and explicit dimensions replace each other.
// - loadRunConfig: we test the file, env and HTML2IMG_CONFIG lookup.
// - Tests use t.Setenv() which prevents t.Parallel() at parent level.

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-html2img/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("Tier 1 - Essential", func(t *testing.T) {
		t.Setenv("HTML2IMG_CONFIG", "/etc/html2img.yaml")
		t.Setenv("HTML2IMG_FORMAT", "png")
		t.Setenv("HTML2IMG_PRESET", "Mobile")
		t.Setenv("HTML2IMG_WIDTH", "640")
		t.Setenv("HTML2IMG_HEIGHT", "480")
		t.Setenv("HTML2IMG_QUALITY", "70")
		t.Setenv("HTML2IMG_TIMEOUT", "1m")

		cfg := loadEnvConfig(&bytes.Buffer{})

		if cfg.ConfigPath != "/etc/html2img.yaml" {
			t.Errorf("ConfigPath = %q", cfg.ConfigPath)
		}
		if cfg.Format != "png" || cfg.Preset != "Mobile" || cfg.Timeout != "1m" {
			t.Errorf("Format/Preset/Timeout = %q/%q/%q", cfg.Format, cfg.Preset, cfg.Timeout)
		}
		if cfg.Width != 640 || cfg.Height != 480 || cfg.Quality != 70 {
			t.Errorf("Width/Height/Quality = %d/%d/%d, want 640/480/70", cfg.Width, cfg.Height, cfg.Quality)
		}
	})

	t.Run("Tier 2 - I/O and browser", func(t *testing.T) {
		t.Setenv("HTML2IMG_OUTPUT_DIR", "/out")
		t.Setenv("HTML2IMG_STYLE", "dark")
		t.Setenv("HTML2IMG_WORKERS", "4")
		t.Setenv("HTML2IMG_ENGINE", "cdp")
		t.Setenv("HTML2IMG_BROWSER_BIN", "/usr/bin/chromium")
		t.Setenv("HTML2IMG_NO_SANDBOX", "1")
		t.Setenv("HTML2IMG_ADDR", ":9000")

		cfg := loadEnvConfig(&bytes.Buffer{})

		if cfg.OutputDir != "/out" || cfg.Style != "dark" || cfg.Workers != 4 {
			t.Errorf("OutputDir/Style/Workers = %q/%q/%d", cfg.OutputDir, cfg.Style, cfg.Workers)
		}
		if cfg.Engine != "cdp" || cfg.BrowserBin != "/usr/bin/chromium" {
			t.Errorf("Engine/BrowserBin = %q/%q", cfg.Engine, cfg.BrowserBin)
		}
		if !cfg.NoSandbox {
			t.Error("NoSandbox = false, want true")
		}
		if cfg.Addr != ":9000" {
			t.Errorf("Addr = %q, want :9000", cfg.Addr)
		}
	})

	t.Run("Tier 3 - Storage and logging", func(t *testing.T) {
		t.Setenv("HTML2IMG_S3_ENDPOINT", "localhost:9000")
		t.Setenv("HTML2IMG_S3_BUCKET", "cards")
		t.Setenv("HTML2IMG_S3_ACCESS_KEY", "ak")
		t.Setenv("HTML2IMG_S3_SECRET_KEY", "sk")
		t.Setenv("HTML2IMG_S3_SECURE", "true")
		t.Setenv("HTML2IMG_LOG_LEVEL", "debug")
		t.Setenv("HTML2IMG_LOG_FORMAT", "json")

		cfg := loadEnvConfig(&bytes.Buffer{})

		if cfg.S3Endpoint != "localhost:9000" || cfg.S3Bucket != "cards" {
			t.Errorf("S3Endpoint/S3Bucket = %q/%q", cfg.S3Endpoint, cfg.S3Bucket)
		}
		if cfg.S3AccessKey != "ak" || cfg.S3SecretKey != "sk" {
			t.Error("S3 credentials not loaded")
		}
		if !cfg.S3Secure {
			t.Error("S3Secure = false, want true")
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("LogLevel/LogFormat = %q/%q", cfg.LogLevel, cfg.LogFormat)
		}
	})

	t.Run("malformed integers are ignored", func(t *testing.T) {
		t.Setenv("HTML2IMG_WIDTH", "wide")
		t.Setenv("HTML2IMG_WORKERS", "-2")

		var w bytes.Buffer
		cfg := loadEnvConfig(&w)

		if cfg.Width != 0 || cfg.Workers != 0 {
			t.Errorf("Width/Workers = %d/%d, want 0/0", cfg.Width, cfg.Workers)
		}
		if !strings.Contains(w.String(), "HTML2IMG_WIDTH") || !strings.Contains(w.String(), "HTML2IMG_WORKERS") {
			t.Errorf("warnings = %q, want both variables named", w.String())
		}
	})

	t.Run("sandbox needs exactly 1", func(t *testing.T) {
		t.Setenv("HTML2IMG_NO_SANDBOX", "true")

		if loadEnvConfig(&bytes.Buffer{}).NoSandbox {
			t.Error("NoSandbox = true for \"true\", want only \"1\"")
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("HTML2IMG_FROMAT", "png")
	t.Setenv("HTML2IMG_FORMAT", "png")

	var w bytes.Buffer
	warnUnknownEnvVars(&w)

	if !strings.Contains(w.String(), "HTML2IMG_FROMAT") {
		t.Errorf("warnings = %q, want HTML2IMG_FROMAT", w.String())
	}
	if strings.Contains(w.String(), "HTML2IMG_FORMAT ") {
		t.Errorf("known variable warned: %q", w.String())
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env over config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		env   envConfig
		file  config.Config
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "env overrides file",
			env:  envConfig{Format: "jpg", Quality: 60, OutputDir: "/env"},
			file: config.Config{Export: config.ExportConfig{Format: "png", Quality: 90}, Output: config.OutputConfig{Dir: "/file"}},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Export.Format != "jpg" || cfg.Export.Quality != 60 || cfg.Output.Dir != "/env" {
					t.Errorf("got %q/%d/%q, want jpg/60//env", cfg.Export.Format, cfg.Export.Quality, cfg.Output.Dir)
				}
			},
		},
		{
			name: "unset env keeps file",
			file: config.Config{Export: config.ExportConfig{Format: "pdf"}, Browser: config.BrowserConfig{Engine: "cdp"}},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Export.Format != "pdf" || cfg.Browser.Engine != "cdp" {
					t.Errorf("got %q/%q, want pdf/cdp", cfg.Export.Format, cfg.Browser.Engine)
				}
			},
		},
		{
			name: "env preset replaces file dimensions",
			env:  envConfig{Preset: "Tablet"},
			file: config.Config{Export: config.ExportConfig{Width: 100, Height: 200}},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Export.Preset != "Tablet" || cfg.Export.Width != 0 || cfg.Export.Height != 0 {
					t.Errorf("got %q %dx%d, want Tablet 0x0", cfg.Export.Preset, cfg.Export.Width, cfg.Export.Height)
				}
			},
		},
		{
			name: "env dimensions replace file preset",
			env:  envConfig{Width: 300},
			file: config.Config{Export: config.ExportConfig{Preset: "Tablet"}},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Export.Preset != "" || cfg.Export.Width != 300 {
					t.Errorf("got %q %d, want no preset and width 300", cfg.Export.Preset, cfg.Export.Width)
				}
			},
		},
		{
			name: "storage and logging",
			env:  envConfig{S3Bucket: "b", S3Secure: true, LogLevel: "info", LogFile: "/var/log/h.log"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Storage.S3.Bucket != "b" || !cfg.Storage.S3.Secure {
					t.Errorf("S3 = %+v", cfg.Storage.S3)
				}
				if cfg.Log.Level != "info" || cfg.Log.File != "/var/log/h.log" {
					t.Errorf("Log = %+v", cfg.Log)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.file
			applyEnvConfig(&tt.env, &cfg)
			tt.check(t, &cfg)
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadRunConfig - File and env layering
// ---------------------------------------------------------------------------

func TestLoadRunConfig(t *testing.T) {
	t.Run("no file starts empty", func(t *testing.T) {
		te := newTestEnv(t)

		cfg, err := loadRunConfig("", te.Environment)
		if err != nil {
			t.Fatalf("loadRunConfig() = %v", err)
		}
		if cfg.Export.Format != "" {
			t.Errorf("Format = %q, want empty before defaults", cfg.Export.Format)
		}
	})

	t.Run("HTML2IMG_CONFIG names the file", func(t *testing.T) {
		t.Setenv("HTML2IMG_CONFIG", "team")
		t.Setenv("HTML2IMG_QUALITY", "50")

		te := newTestEnv(t)
		var asked string
		te.LoadConfig = func(name string) (*config.Config, error) {
			asked = name
			return &config.Config{Export: config.ExportConfig{Format: "png", Quality: 80}}, nil
		}

		cfg, err := loadRunConfig("", te.Environment)
		if err != nil {
			t.Fatalf("loadRunConfig() = %v", err)
		}
		if asked != "team" {
			t.Errorf("LoadConfig(%q), want team", asked)
		}
		if cfg.Export.Format != "png" || cfg.Export.Quality != 50 {
			t.Errorf("got %q/%d, want png/50", cfg.Export.Format, cfg.Export.Quality)
		}
	})

	t.Run("flag wins over HTML2IMG_CONFIG", func(t *testing.T) {
		t.Setenv("HTML2IMG_CONFIG", "team")

		te := newTestEnv(t)
		var asked string
		te.LoadConfig = func(name string) (*config.Config, error) {
			asked = name
			return &config.Config{}, nil
		}

		if _, err := loadRunConfig("mine.yaml", te.Environment); err != nil {
			t.Fatalf("loadRunConfig() = %v", err)
		}
		if asked != "mine.yaml" {
			t.Errorf("LoadConfig(%q), want mine.yaml", asked)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		te := newTestEnv(t)

		_, err := loadRunConfig("nope", te.Environment)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("loadRunConfig() = %v, want ErrConfigNotFound", err)
		}
	})
}
