package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tu "github.com/benoitkugler/linebox/utils/testutils"
)

const fragment = `<p>The quick brown fox jumps over the lazy dog.</p><p>Second <b>paragraph</b></p>`

func writeFragment(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(fragment), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDump(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	path := writeFragment(t)
	out, err := run(t, "dump", path, "--width", "2000")
	if err != nil {
		t.Fatal(err)
	}
	tu.AssertEqual(t, strings.Count(out, "1 line(s)"), 2)
	tu.AssertEqual(t, strings.Contains(out, `"paragraph"`), true)
}

func TestDumpNarrow(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	path := writeFragment(t)
	out, err := run(t, "dump", path, "--width", "120")
	if err != nil {
		t.Fatal(err)
	}
	tu.AssertEqual(t, strings.Count(out, "line(s)"), 2)
	// the first paragraph is broken
	tu.AssertEqual(t, strings.Contains(out, "line 1 "), true)
}

func TestEnvironment(t *testing.T) {
	path := writeFragment(t)
	t.Setenv("LINEDUMP_TEXT_OVERFLOW", "scroll")
	_, err := run(t, "dump", path)
	if err == nil || !strings.Contains(err.Error(), "scroll") {
		t.Fatalf("expected an invalid text-overflow error, got %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	path := writeFragment(t)
	cfgPath := filepath.Join(t.TempDir(), "linedump.toml")
	if err := os.WriteFile(cfgPath, []byte("width = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "dump", path, "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "invalid width") {
		t.Fatalf("expected an invalid width error, got %v", err)
	}
}

func TestMissingInput(t *testing.T) {
	_, err := run(t, "dump", filepath.Join(t.TempDir(), "missing.html"))
	if err == nil || !strings.Contains(err.Error(), "opening input") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRender(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	path := writeFragment(t)
	png := filepath.Join(t.TempDir(), "out.png")
	out, err := run(t, "render", path, "--png", png, "--width", "300")
	if err != nil {
		t.Fatal(err)
	}
	tu.AssertEqual(t, strings.HasPrefix(out, png+": 300x"), true)
	info, err := os.Stat(png)
	if err != nil {
		t.Fatal(err)
	}
	tu.AssertEqual(t, info.Size() > 0, true)

	_, err = run(t, "render", path)
	if err == nil || !strings.Contains(err.Error(), "--png") {
		t.Fatalf("expected a missing output error, got %v", err)
	}
}
