package main

// Notes:
// - exportBatch: we test success, studio init failure and cancellation with
//   a fake pool. Real Chrome exports are covered by the root integration tests.
// - exportJobWith: we test directory, stdout and upload delivery.
// - runExport: we test flag merging end to end with fakes injected through
//   Environment. Watch mode is covered by watch_test.go.
// - printResults: we test quiet, verbose and summary output.

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2img"
)

// fakeUploader records uploads and returns a fixed key.
type fakeUploader struct {
	key string
	err error
	got []string
}

func (u *fakeUploader) Upload(_ context.Context, a *html2img.Artifact) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.got = append(u.got, a.Filename)
	return u.key, nil
}

func defaultParams() *exportParams {
	return &exportParams{
		width:   1080,
		height:  1080,
		format:  html2img.FormatSVG,
		quality: 95,
	}
}

// ---------------------------------------------------------------------------
// TestExportBatch - Concurrent job processing
// ---------------------------------------------------------------------------

func TestExportBatch_AllSucceed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pool := newFakePool(2)
	jobs := []exportJob{
		{Input: "a", Markup: "<p>a</p>", Basename: "a", OutputDir: dir},
		{Input: "b", Markup: "<p>b</p>", Basename: "b", OutputDir: dir},
		{Input: "c", Markup: "<p>c</p>", Basename: "c", OutputDir: dir},
	}

	results := exportBatch(context.Background(), pool, jobs, defaultParams())

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
		if r.Input != jobs[i].Input {
			t.Errorf("results[%d].Input = %q, want %q", i, r.Input, jobs[i].Input)
		}
		want := filepath.Join(dir, jobs[i].Basename+".svg")
		if r.Output != want {
			t.Errorf("results[%d].Output = %q, want %q", i, r.Output, want)
		}
		if got := readFile(t, want); got != jobs[i].Markup {
			t.Errorf("%s content = %q, want %q", want, got, jobs[i].Markup)
		}
	}
	if pool.acquired != pool.released {
		t.Errorf("acquired %d, released %d", pool.acquired, pool.released)
	}
}

func TestExportBatch_Empty(t *testing.T) {
	t.Parallel()

	if got := exportBatch(context.Background(), newFakePool(1), nil, defaultParams()); got != nil {
		t.Errorf("exportBatch(nil) = %v, want nil", got)
	}
}

func TestExportBatch_AcquireError(t *testing.T) {
	t.Parallel()

	pool := newFakePool(2)
	pool.acquireErr = html2img.ErrBrowserConnect
	jobs := []exportJob{
		{Input: "a", Markup: "x", OutputDir: t.TempDir()},
		{Input: "b", Markup: "y", OutputDir: t.TempDir()},
	}

	results := exportBatch(context.Background(), pool, jobs, defaultParams())

	for i, r := range results {
		if !errors.Is(r.Err, ErrStudioInit) {
			t.Errorf("results[%d].Err = %v, want ErrStudioInit", i, r.Err)
		}
		if !errors.Is(r.Err, html2img.ErrBrowserConnect) {
			t.Errorf("results[%d].Err = %v, want wrapped ErrBrowserConnect", i, r.Err)
		}
	}
}

func TestExportBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := exportBatch(ctx, newFakePool(1), []exportJob{{Input: "a", Markup: "x"}}, defaultParams())

	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", results[0].Err)
	}
}

// ---------------------------------------------------------------------------
// TestExportJobWith - Single job rendering and delivery
// ---------------------------------------------------------------------------

func TestExportJobWith_PassesRequest(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	params := defaultParams()
	params.width, params.height = 1280, 720
	params.format = html2img.FormatJPEG
	params.quality = 80
	params.css = "body{}"
	job := exportJob{Input: "x", Markup: "<b>x</b>", SourceDir: "/src", Basename: "card", OutputDir: t.TempDir()}

	result := exportJobWith(context.Background(), r, job, params)
	if result.Err != nil {
		t.Fatalf("Err = %v", result.Err)
	}

	reqs := r.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	want := html2img.Request{
		Markup:         "<b>x</b>",
		CSS:            "body{}",
		SourceDir:      "/src",
		Width:          1280,
		Height:         720,
		Format:         html2img.FormatJPEG,
		QualityPercent: 80,
		Basename:       "card",
	}
	if reqs[0] != want {
		t.Errorf("request = %+v, want %+v", reqs[0], want)
	}
}

func TestExportJobWith_RendererError(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{err: html2img.ErrPageLoad}
	result := exportJobWith(context.Background(), r, exportJob{Input: "x", Markup: "x"}, defaultParams())

	if !errors.Is(result.Err, html2img.ErrPageLoad) {
		t.Errorf("Err = %v, want ErrPageLoad", result.Err)
	}
	if result.Output != "" {
		t.Errorf("Output = %q, want empty", result.Output)
	}
}

func TestExportJobWith_MissingFile(t *testing.T) {
	t.Parallel()

	job := exportJob{Input: "gone.html", Path: filepath.Join(t.TempDir(), "gone.html")}
	result := exportJobWith(context.Background(), &fakeRenderer{}, job, defaultParams())

	if !errors.Is(result.Err, ErrReadInput) {
		t.Errorf("Err = %v, want ErrReadInput", result.Err)
	}
}

func TestExportJobWith_Stdout(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	params := defaultParams()
	params.toStdout = true
	params.stdout = &stdout

	result := exportJobWith(context.Background(), &fakeRenderer{}, exportJob{Input: "-", Markup: "<svg/>"}, params)

	if result.Err != nil {
		t.Fatalf("Err = %v", result.Err)
	}
	if result.Output != stdinInput {
		t.Errorf("Output = %q, want %q", result.Output, stdinInput)
	}
	if stdout.String() != "<svg/>" {
		t.Errorf("stdout = %q, want artifact bytes", stdout.String())
	}
}

func TestExportJobWith_Upload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		up      *fakeUploader
		wantKey string
		wantErr error
	}{
		{
			name:    "uploaded after local write",
			up:      &fakeUploader{key: "cards/id/export.svg"},
			wantKey: "cards/id/export.svg",
		},
		{
			name:    "upload failure is a delivery error",
			up:      &fakeUploader{err: errFake},
			wantErr: html2img.ErrDelivery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			params := defaultParams()
			params.upload = tt.up

			result := exportJobWith(context.Background(), &fakeRenderer{}, exportJob{Input: "x", Markup: "x", OutputDir: dir}, params)

			if tt.wantErr != nil {
				if !errors.Is(result.Err, tt.wantErr) {
					t.Errorf("Err = %v, want %v", result.Err, tt.wantErr)
				}
				return
			}
			if result.Err != nil {
				t.Fatalf("Err = %v", result.Err)
			}
			if result.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", result.Key, tt.wantKey)
			}
			if result.Output != filepath.Join(dir, "export.svg") {
				t.Errorf("Output = %q, want local file", result.Output)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCheckJobs - Flag and input compatibility
// ---------------------------------------------------------------------------

func TestCheckJobs(t *testing.T) {
	t.Parallel()

	one := []exportJob{{Input: "a.html", Path: "a.html"}}
	two := []exportJob{{Input: "a.html", Path: "a.html"}, {Input: "b.html", Path: "b.html"}}
	stdin := []exportJob{{Input: "-", Markup: "x"}}

	tests := []struct {
		name     string
		jobs     []exportJob
		flags    exportFlags
		toStdout bool
		wantErr  bool
	}{
		{name: "single input with name", jobs: one, flags: exportFlags{name: "card"}},
		{name: "several inputs with name", jobs: two, flags: exportFlags{name: "card"}, wantErr: true},
		{name: "single input to stdout", jobs: one, toStdout: true},
		{name: "several inputs to stdout", jobs: two, toStdout: true, wantErr: true},
		{name: "watch files", jobs: two, flags: exportFlags{watch: true}},
		{name: "watch stdin", jobs: stdin, flags: exportFlags{watch: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkJobs(tt.jobs, &tt.flags, &exportParams{toStdout: tt.toStdout})
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Errorf("checkJobs() = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil {
				t.Errorf("checkJobs() = %v, want nil", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []exportResult{
		{Input: "a.html", Output: "out/a.svg", Key: "p/id/a.svg"},
		{Input: "b.html", Err: errFake},
	}

	tests := []struct {
		name       string
		common     commonFlags
		wantOut    []string
		notOut     []string
		wantErrOut string
	}{
		{
			name:       "default",
			wantOut:    []string{"Created out/a.svg", "Uploaded p/id/a.svg", "1 succeeded, 1 failed"},
			wantErrOut: "FAILED b.html: fake failure",
		},
		{
			name:       "verbose",
			common:     commonFlags{verbose: true},
			wantOut:    []string{"a.html -> out/a.svg"},
			notOut:     []string{"Created"},
			wantErrOut: "FAILED b.html",
		},
		{
			name:       "quiet",
			common:     commonFlags{quiet: true},
			notOut:     []string{"Created", "succeeded"},
			wantErrOut: "FAILED b.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out, errOut bytes.Buffer
			failed := printResults(results, tt.common, &out, &errOut)

			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("out missing %q:\n%s", want, out.String())
				}
			}
			for _, not := range tt.notOut {
				if strings.Contains(out.String(), not) {
					t.Errorf("out should not contain %q:\n%s", not, out.String())
				}
			}
			if !strings.Contains(errOut.String(), tt.wantErrOut) {
				t.Errorf("errOut = %q, want %q", errOut.String(), tt.wantErrOut)
			}
		})
	}
}

func TestPrintResults_SingleHasNoSummary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printResults([]exportResult{{Input: "a", Output: "a.svg"}}, commonFlags{}, &out, &out)

	if strings.Contains(out.String(), "succeeded") {
		t.Errorf("single result printed a summary: %q", out.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunExport - End to end with injected fakes
// ---------------------------------------------------------------------------

func runExportArgs(t *testing.T, te *testEnv, args ...string) error {
	t.Helper()
	return runExportCmd(context.Background(), args, te.Environment)
}

func TestRunExport_FileNextToInput(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "card.html", "<h1>card</h1>")

	if err := runExportArgs(t, te, input); err != nil {
		t.Fatalf("runExport() = %v", err)
	}

	out := filepath.Join(dir, "card.svg")
	if got := readFile(t, out); got != "<h1>card</h1>" {
		t.Errorf("artifact = %q", got)
	}
	if !strings.Contains(te.stdout.String(), "Created "+out) {
		t.Errorf("stdout = %q, want Created line", te.stdout.String())
	}

	req := te.pool.renderer.Requests()[0]
	if req.Width != 1080 || req.Height != 1080 || req.Format != html2img.FormatSVG {
		t.Errorf("request frame = %dx%d %v, want 1080x1080 svg", req.Width, req.Height, req.Format)
	}
	if req.SourceDir != dir {
		t.Errorf("SourceDir = %q, want %q", req.SourceDir, dir)
	}
}

func TestRunExport_FlagsReachRequest(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "card.html", "<p>x</p>")
	cssPath := writeFile(t, dir, "extra.css", "p{color:red}")
	outDir := filepath.Join(dir, "out")

	err := runExportArgs(t, te,
		"--preset", "Instagram Story",
		"-f", "png",
		"--style", "default",
		"--css", cssPath,
		"--name", "story",
		"-o", outDir,
		"-t", "5s",
		input,
	)
	if err != nil {
		t.Fatalf("runExport() = %v", err)
	}

	req := te.pool.renderer.Requests()[0]
	if req.Width != 1080 || req.Height != 1920 {
		t.Errorf("frame = %dx%d, want 1080x1920", req.Width, req.Height)
	}
	if req.Format != html2img.FormatPNG {
		t.Errorf("Format = %v, want png", req.Format)
	}
	if req.CSS != "body{margin:0}\np{color:red}" {
		t.Errorf("CSS = %q, want style then file", req.CSS)
	}
	if req.Basename != "story" {
		t.Errorf("Basename = %q, want story", req.Basename)
	}
	readFile(t, filepath.Join(outDir, "story.png"))

	if got := te.lastSettings(t).Timeout.String(); got != "5s" {
		t.Errorf("Timeout = %s, want 5s", got)
	}
}

func TestRunExport_SampleWhenNoInput(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	outDir := t.TempDir()

	if err := runExportArgs(t, te, "--sample", "quote", "-o", outDir); err != nil {
		t.Fatalf("runExport() = %v", err)
	}
	if got := readFile(t, filepath.Join(outDir, "export.svg")); got != "<blockquote>q</blockquote>" {
		t.Errorf("artifact = %q, want sample markup", got)
	}
}

func TestRunExport_StdinToStdout(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.Stdin = strings.NewReader("<i>piped</i>")

	if err := runExportArgs(t, te, "-o", "-", "-"); err != nil {
		t.Fatalf("runExport() = %v", err)
	}
	if te.stdout.String() != "<i>piped</i>" {
		t.Errorf("stdout = %q, want artifact only", te.stdout.String())
	}
	if !strings.Contains(te.stderr.String(), "Created -") {
		t.Errorf("stderr = %q, want result line", te.stderr.String())
	}
}

func TestRunExport_Directory(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	src := t.TempDir()
	writeFile(t, src, "a.html", "a")
	writeFile(t, src, "sub/b.htm", "b")
	writeFile(t, src, "notes.txt", "skip")
	outDir := t.TempDir()

	if err := runExportArgs(t, te, "-o", outDir, "-f", "pdf", src); err != nil {
		t.Fatalf("runExport() = %v", err)
	}
	if got := readFile(t, filepath.Join(outDir, "a.pdf")); got != "a" {
		t.Errorf("a.pdf = %q", got)
	}
	if got := readFile(t, filepath.Join(outDir, "sub", "b.pdf")); got != "b" {
		t.Errorf("sub/b.pdf = %q", got)
	}
	if !strings.Contains(te.stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q, want summary", te.stdout.String())
	}
}

func TestRunExport_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "a.html", "a")
	other := writeFile(t, dir, "b.html", "b")
	text := writeFile(t, dir, "a.txt", "a")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "missing input", args: []string{filepath.Join(dir, "nope.html")}, wantCode: ExitIO},
		{name: "missing css", args: []string{"--css", filepath.Join(dir, "nope.css"), input}, wantCode: ExitIO},
		{name: "wrong extension", args: []string{text}, wantCode: ExitUsage},
		{name: "name with two inputs", args: []string{"--name", "x", input, other}, wantCode: ExitUsage},
		{name: "preset and width", args: []string{"--preset", "Mobile", "-W", "100", input}, wantCode: ExitUsage},
		{name: "unknown preset", args: []string{"--preset", "Billboard", input}, wantCode: ExitUsage},
		{name: "unknown format", args: []string{"-f", "gif", input}, wantCode: ExitUsage},
		{name: "too many workers", args: []string{"-w", "99", input}, wantCode: ExitUsage},
		{name: "unknown style", args: []string{"--style", "neon", input}, wantCode: ExitUsage},
		{name: "unknown engine", args: []string{"--engine", "gecko", input}, wantCode: ExitUsage},
		{name: "unknown flag", args: []string{"--nope", input}, wantCode: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := runExportArgs(t, newTestEnv(t), tt.args...)
			if err == nil {
				t.Fatal("runExport() = nil, want error")
			}
			if got := exitCodeFor(err); got != tt.wantCode {
				t.Errorf("exitCodeFor(%v) = %d, want %d", err, got, tt.wantCode)
			}
		})
	}
}

func TestRunExport_SingleFailureKeepsCause(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.pool.renderer.err = html2img.ErrPageLoad
	input := writeFile(t, t.TempDir(), "a.html", "a")

	err := runExportArgs(t, te, input)
	if !errors.Is(err, html2img.ErrPageLoad) {
		t.Errorf("runExport() = %v, want ErrPageLoad", err)
	}
	if exitCodeFor(err) != ExitBrowser {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitBrowser)
	}
}

func TestRunExport_SeveralFailures(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.pool.renderer.err = errFake
	dir := t.TempDir()
	a := writeFile(t, dir, "a.html", "a")
	b := writeFile(t, dir, "b.html", "b")

	err := runExportArgs(t, te, a, b)
	if !errors.Is(err, ErrExportsFailed) {
		t.Errorf("runExport() = %v, want ErrExportsFailed", err)
	}
	if !strings.Contains(err.Error(), "2 of 2") {
		t.Errorf("error = %q, want count", err.Error())
	}
}

func TestRunExport_Help(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	if err := runExportArgs(t, te, "--help"); err != nil {
		t.Fatalf("runExport(--help) = %v, want nil", err)
	}
	if !strings.Contains(te.stderr.String(), "Usage: html2img export") {
		t.Errorf("stderr = %q, want usage", te.stderr.String())
	}
}
