// Package hints turns common export failures into one actionable line.
// Every hint renders as "\n  hint: <text>" so it can follow an error message.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-html2img/internal/fileutil"
)

// Host is what the hints know about the machine running the exporter.
type Host struct {
	CI            bool
	Container     bool
	ContainerHint string // signal that revealed the container
	NoSandbox     bool   // HTML2IMG_NO_SANDBOX=1
	BrowserBin    string // HTML2IMG_BROWSER_BIN, else ROD_BROWSER_BIN
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// dockerEnvFile is created by Docker in every container.
var dockerEnvFile = "/.dockerenv"

// DetectHost reads the process environment.
func DetectHost() Host {
	h := Host{NoSandbox: os.Getenv("HTML2IMG_NO_SANDBOX") == "1"}

	h.BrowserBin = os.Getenv("HTML2IMG_BROWSER_BIN")
	if h.BrowserBin == "" {
		h.BrowserBin = os.Getenv("ROD_BROWSER_BIN")
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			h.CI = true
			break
		}
	}

	switch {
	case os.Getenv("HTML2IMG_CONTAINER") == "1":
		h.Container, h.ContainerHint = true, "HTML2IMG_CONTAINER=1"
	case fileutil.FileExists(dockerEnvFile):
		h.Container, h.ContainerHint = true, dockerEnvFile
	case os.Getenv("container") != "":
		h.Container, h.ContainerHint = true, "container="+os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		h.Container, h.ContainerHint = true, "KUBERNETES_SERVICE_HOST"
	}
	return h
}

// NeedsNoSandbox reports whether Chrome likely needs its sandbox disabled.
func (h Host) NeedsNoSandbox() bool {
	return (h.CI || h.Container) && !h.NoSandbox
}

// ForBrowserConnect hints at browser launch and connection failures on the
// current host.
func ForBrowserConnect() string {
	return ForBrowser(DetectHost())
}

// ForBrowser hints at browser failures on h.
func ForBrowser(h Host) string {
	var parts []string
	if h.NeedsNoSandbox() {
		parts = append(parts, "set HTML2IMG_NO_SANDBOX=1 for Docker/CI")
	}
	if h.BrowserBin == "" {
		parts = append(parts, "set HTML2IMG_BROWSER_BIN to use an installed Chrome")
	}
	parts = append(parts, "run 'html2img doctor' to check the environment")
	return format(strings.Join(parts, "; "))
}

func ForTimeout() string {
	return format("for heavy markup or remote assets, raise --timeout")
}

// ForConfigNotFound suggests --config, or creating the first user-level
// path that was searched.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/go-html2img") {
			return format(hint + " or create " + p)
		}
	}
	return format(hint)
}

func ForOutputDirectory() string {
	return format("check that the output directory exists and is writable")
}

// ForStyleNotFound lists the styles that can be used instead.
func ForStyleNotFound(available []string) string {
	return oneOf("available: ", available)
}

// ForPresetNotFound lists the preset names accepted by --preset.
func ForPresetNotFound(available []string) string {
	return oneOf("run 'html2img presets' or use one of: ", available)
}

func ForStorage() string {
	return format("check --s3-endpoint and --s3-bucket; credentials come from HTML2IMG_S3_ACCESS_KEY and HTML2IMG_S3_SECRET_KEY")
}

// ForBusy answers an export rejected while another one runs.
func ForBusy() string {
	return format("wait for the current export to finish, then retry")
}

// ForListen answers a web studio that cannot bind addr.
func ForListen(addr string) string {
	return format("address " + addr + " is unavailable; pick another with --addr")
}

func oneOf(lead string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	return format(lead + strings.Join(names, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
