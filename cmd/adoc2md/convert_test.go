package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv returns an Environment with captured output and a fixed clock.
func testEnv(stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) },
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}
	return env, &stdout, &stderr
}

// writeFiles creates files under dir, making parent directories as needed.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestRun_ConvertFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"guide.adoc": "= Title\n\n{docname} with *bold*.",
	})

	env, stdout, stderr := testEnv("")
	code := run(context.Background(), []string{"convert", filepath.Join(dir, "guide.adoc")}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}

	out := filepath.Join(dir, "guide.md")
	if got, want := readFile(t, out), "# Title\n\nguide with **bold**.\n"; got != want {
		t.Errorf("guide.md = %q, want %q", got, want)
	}
	if !strings.Contains(stdout.String(), "Created "+out) {
		t.Errorf("stdout = %q, want Created line", stdout)
	}
}

func TestRun_ConvertDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writeFiles(t, in, map[string]string{
		"a.adoc":                        "Alpha.",
		filepath.Join("sub", "b.adoc"): "Beta.",
		"skip.txt":                      "ignored",
	})

	env, stdout, stderr := testEnv("")
	code := run(context.Background(), []string{"convert", in, "-o", out, "-w", "2"}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}

	if got := readFile(t, filepath.Join(out, "a.md")); got != "Alpha.\n" {
		t.Errorf("a.md = %q, want %q", got, "Alpha.\n")
	}
	if got := readFile(t, filepath.Join(out, "sub", "b.md")); got != "Beta.\n" {
		t.Errorf("sub/b.md = %q, want %q", got, "Beta.\n")
	}
	if _, err := os.Stat(filepath.Join(out, "skip.md")); !os.IsNotExist(err) {
		t.Errorf("skip.md should not exist, stat error = %v", err)
	}
	if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q, want summary", stdout)
	}
}

func TestRun_Attributes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc.adoc": ":product: Gadget\n\n{product} {edition} {localyear}",
		"cfg.yaml": "attributes:\n  edition: Pro\n  product: Thing\n",
	})

	env, _, stderr := testEnv("")
	args := []string{
		"convert", filepath.Join(dir, "doc.adoc"),
		"-c", filepath.Join(dir, "cfg.yaml"),
		"-a", "product=Widget",
		"-q",
	}
	if code := run(context.Background(), args, env); code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}

	if got, want := readFile(t, filepath.Join(dir, "doc.md")), "Widget Pro 2026\n"; got != want {
		t.Errorf("doc.md = %q, want %q", got, want)
	}
}

func TestRun_Include(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		filepath.Join("docs", "main.adoc"):          "include::parts/part.adoc[]\n\ninclude::../secret.adoc[]",
		filepath.Join("docs", "parts", "part.adoc"): "Included.",
		"secret.adoc":                               "Secret.",
	})

	env, _, stderr := testEnv("")
	code := run(context.Background(), []string{"convert", filepath.Join(dir, "docs", "main.adoc")}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}

	got := readFile(t, filepath.Join(dir, "docs", "main.md"))
	if !strings.Contains(got, "Included.") {
		t.Errorf("main.md = %q, want included text", got)
	}
	if strings.Contains(got, "Secret.") {
		t.Errorf("main.md = %q, include escaped the input root", got)
	}
	if !strings.Contains(got, "secret.adoc") {
		t.Errorf("main.md = %q, want refused include as a link", got)
	}
	if !strings.Contains(stderr.String(), "include refused") {
		t.Errorf("stderr = %q, want refusal warning", stderr)
	}
}

func TestRun_HTMLPreview(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc.adoc": "= Guide\n\n== Getting Started\n\nText.",
	})

	env, stdout, stderr := testEnv("")
	code := run(context.Background(), []string{"convert", filepath.Join(dir, "doc.adoc"), "--html"}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}

	html := readFile(t, filepath.Join(dir, "doc.html"))
	for _, want := range []string{"<title>Guide</title>", `id="getting-started"`, "<style>"} {
		if !strings.Contains(html, want) {
			t.Errorf("doc.html missing %q", want)
		}
	}
	if !strings.Contains(stdout.String(), filepath.Join(dir, "doc.html")) {
		t.Errorf("stdout = %q, want html path", stdout)
	}
}

func TestRun_Stdin(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := testEnv("Hello *world*.\r\n")
	code := run(context.Background(), []string{"convert", "-"}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}
	if got, want := stdout.String(), "Hello **world**.\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_StdinToFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "nested", "out.md")
	env, stdout, stderr := testEnv("== Part")
	code := run(context.Background(), []string{"convert", "-", "-o", out}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}
	if got := readFile(t, out); got != "## Part\n" {
		t.Errorf("out.md = %q, want %q", got, "## Part\n")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout)
	}
}

func TestRun_FileToStdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"doc.adoc": "Text."})

	env, stdout, stderr := testEnv("")
	code := run(context.Background(), []string{"convert", filepath.Join(dir, "doc.adoc"), "-o", "-"}, env)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, ExitSuccess, stderr)
	}
	if got := stdout.String(); got != "Text.\n" {
		t.Errorf("stdout = %q, want %q", got, "Text.\n")
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.md")); !os.IsNotExist(err) {
		t.Errorf("doc.md should not exist, stat error = %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"notes.txt":      "x",
		"doc.adoc":       "x",
		"bad.yaml":       "unknown: true\n",
		"baddate.yaml":   "date:\n  format: \"[oops\"\n",
		"empty/.keep":    "",
		"empty/note.txt": "x",
	})

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"no command", nil, ExitUsage},
		{"unknown command", []string{"frobnicate"}, ExitUsage},
		{"no input", []string{"convert"}, ExitIO},
		{"missing file", []string{"convert", filepath.Join(dir, "missing.adoc")}, ExitIO},
		{"unsupported input", []string{"convert", filepath.Join(dir, "notes.txt")}, ExitUsage},
		{"no sources", []string{"convert", filepath.Join(dir, "empty")}, ExitIO},
		{"negative workers", []string{"convert", "-w", "-1", filepath.Join(dir, "doc.adoc")}, ExitUsage},
		{"bad flag", []string{"convert", "--nope"}, ExitUsage},
		{"bad attribute", []string{"convert", "-a", "=x", filepath.Join(dir, "doc.adoc")}, ExitUsage},
		{"config not found", []string{"convert", "-c", filepath.Join(dir, "none.yaml"), filepath.Join(dir, "doc.adoc")}, ExitUsage},
		{"config unknown field", []string{"convert", "-c", filepath.Join(dir, "bad.yaml"), filepath.Join(dir, "doc.adoc")}, ExitUsage},
		{"config bad date", []string{"convert", "-c", filepath.Join(dir, "baddate.yaml"), filepath.Join(dir, "doc.adoc")}, ExitUsage},
		{"stdin with html", []string{"convert", "-", "--html"}, ExitUsage},
		{"too many inputs", []string{"convert", "a.adoc", "b.adoc"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv("")
			if got := run(context.Background(), tt.args, env); got != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d; stderr: %s", tt.args, got, tt.wantCode, stderr)
			}
			if stderr.Len() == 0 {
				t.Errorf("run(%v) wrote nothing to stderr", tt.args)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.adoc": "A.", "b.adoc": "B."})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env, _, stderr := testEnv("")
	if got := run(ctx, []string{"convert", dir}, env); got != ExitGeneral {
		t.Errorf("run() = %d, want %d", got, ExitGeneral)
	}
	if !strings.Contains(stderr.String(), "FAILED") {
		t.Errorf("stderr = %q, want FAILED lines", stderr)
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"version", "--version"} {
		env, stdout, _ := testEnv("")
		if got := run(context.Background(), []string{arg}, env); got != ExitSuccess {
			t.Errorf("run(%q) = %d, want %d", arg, got, ExitSuccess)
		}
		if want := "go-adoc2md " + Version + "\n"; stdout.String() != want {
			t.Errorf("run(%q) stdout = %q, want %q", arg, stdout, want)
		}
	}
}

func TestRun_ConvertHelp(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv("")
	if got := run(context.Background(), []string{"convert", "--help"}, env); got != ExitSuccess {
		t.Errorf("run() = %d, want %d", got, ExitSuccess)
	}
	if !strings.Contains(stderr.String(), "Usage: adoc2md convert") {
		t.Errorf("stderr = %q, want convert usage", stderr)
	}
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.adoc", OutputPath: "a.md", HTMLPath: "a.html", Size: 2048, Duration: 1500 * time.Microsecond},
		{InputPath: "b.adoc", Err: ErrReadSource},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		noStdout   bool
	}{
		{name: "normal", wantStdout: []string{"Created a.md", "Created a.html", "1 succeeded, 1 failed"}},
		{name: "verbose", verbose: true, wantStdout: []string{"a.adoc -> a.md (2ms, 2.0 kB)"}},
		{name: "quiet", quiet: true, noStdout: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv("")
			printResults(results, tt.quiet, tt.verbose, env)

			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout = %q, want %q", stdout, want)
				}
			}
			if tt.noStdout && stdout.Len() != 0 {
				t.Errorf("stdout = %q, want empty", stdout)
			}
			if !strings.Contains(stderr.String(), "FAILED b.adoc") {
				t.Errorf("stderr = %q, want FAILED line", stderr)
			}
		})
	}
}
