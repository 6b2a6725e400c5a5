package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rawDoc = `<svg xmlns="http://www.w3.org/2000/svg">
<use xlink:href="#p117440ae8c"/>
<path id="p117440ae8c" d="M 57.62,41.477 L 357.12,41.477"/>
</svg>
`

func TestRun_InPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.svg")
	if err := os.WriteFile(path, []byte(rawDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Canonicalized: "+path) {
		t.Errorf("stdout = %q, want canonicalized message", stdout.String())
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(got), "xlink:href") {
		t.Error("deprecated link attribute survived")
	}
	if !strings.Contains(string(got), `id="p1"`) {
		t.Errorf("identifier not renumbered:\n%s", got)
	}
}

func TestRun_SeparateOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chart.svg")
	out := filepath.Join(dir, "chart.canonical.svg")
	if err := os.WriteFile(in, []byte(rawDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{in, out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	// The input is untouched.
	orig, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != rawDoc {
		t.Error("input file was modified despite separate output path")
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `d="M 57.6,41.5 L 357.1,41.5"`) {
		t.Errorf("path data not normalized:\n%s", got)
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("stderr = %q, want usage message", stderr.String())
	}

	stderr.Reset()
	if code := run([]string{"a", "b", "c"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1 for too many args", code)
	}
}

func TestRun_MissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "nope.svg")
	if code := run([]string{missing}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "not found") {
		t.Errorf("stderr = %q, want not-found message", stderr.String())
	}
}
