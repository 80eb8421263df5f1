package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
	"github.com/alnah/go-html2img/internal/hints"
)

// ErrNotReady is returned by doctor when a check fails.
var ErrNotReady = errors.New("environment not ready for exports")

// Doctor statuses, worst last.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"no_sandbox"`
	BrowserBin    string `json:"browser_bin"`
}

type systemInfo struct {
	TempWritable bool     `json:"temp_writable"`
	Engines      []string `json:"engines"`
	Formats      []string `json:"formats"`
	Styles       []string `json:"styles"`
}

func (r *doctorResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) failf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// settle derives Status from the collected findings.
func (r *doctorResult) settle() {
	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
}

// runDoctorCmd executes the doctor command.
// Warnings alone succeed; any error returns ErrNotReady.
func runDoctorCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	result := diagnose(hints.DetectHost())
	if *jsonOutput {
		if err := writeJSON(env.Stdout, result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ErrNotReady
	}
	return nil
}

// diagnose runs every check against host.
func diagnose(host hints.Host) *doctorResult {
	r := &doctorResult{Env: envInfo{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Container:     host.Container,
		ContainerHint: host.ContainerHint,
		CI:            host.CI,
		BrowserBin:    host.BrowserBin,
	}}
	if host.NoSandbox {
		r.Env.NoSandbox = "1"
	}

	inspectBrowser(r, host)
	if host.NeedsNoSandbox() {
		r.warnf("Container/CI detected but HTML2IMG_NO_SANDBOX not set. Set HTML2IMG_NO_SANDBOX=1")
	}
	inspectTempDir(r)
	listCapabilities(r)

	r.settle()
	return r
}

// inspectBrowser locates the browser both engines drive and asks its version.
func inspectBrowser(r *doctorResult, host hints.Host) {
	bin := host.BrowserBin
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			r.failf("Chrome/Chromium not found. Install Chrome or set HTML2IMG_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		r.failf("Chrome not found at %s", bin)
		return
	}

	r.Chrome = chromeInfo{Found: true, Path: bin, Sandbox: !host.NoSandbox}
	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- discovered or user-provided browser
	if err != nil {
		r.warnf("Could not get Chrome version: %v", err)
		return
	}
	r.Chrome.Version = strings.TrimSpace(string(out))
}

// inspectTempDir checks that staged uploads and browser profiles can be written.
func inspectTempDir(r *doctorResult) {
	f, err := os.CreateTemp("", "html2img-doctor-*")
	if err != nil {
		r.failf("Temp directory not writable: %s", os.TempDir())
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	r.System.TempWritable = true
}

func listCapabilities(r *doctorResult) {
	r.System.Engines = html2img.Engines
	for _, f := range html2img.Formats {
		r.System.Formats = append(r.System.Formats, f.Extension())
	}
	r.System.Styles = assets.StyleNames()
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	okf := func(format string, args ...any) { fmt.Fprintf(w, "  [OK] "+format+"\n", args...) }

	fmt.Fprintln(w, "html2img doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		okf("Found at %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			okf("Version: %s", r.Chrome.Version)
		}
		sandbox := "enabled"
		if !r.Chrome.Sandbox {
			sandbox = "disabled (HTML2IMG_NO_SANDBOX=1)"
		}
		okf("Sandbox: %s", sandbox)
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	okf("Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		okf("Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		okf("CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		okf("Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	okf("Engines: %s", strings.Join(r.System.Engines, ", "))
	okf("Formats: %s", strings.Join(r.System.Formats, ", "))
	okf("Styles: %s", strings.Join(r.System.Styles, ", "))
	fmt.Fprintln(w)

	printFindings(w, "Warnings:", "WARN", r.Warnings)
	printFindings(w, "Errors:", "ERROR", r.Errors)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printFindings(w io.Writer, title, tag string, findings []string) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, f := range findings {
		fmt.Fprintf(w, "  [%s] %s\n", tag, f)
	}
	fmt.Fprintln(w)
}
