package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "swagger-explorer configuration") || !strings.Contains(s, "# spec: ./petstore.json") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	if !strings.Contains(out.String(), "Wrote sample config to") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestInit_FillsSpecAndLoadsBack(t *testing.T) {
	t.Parallel()
	specPath := writeSpec(t, petstoreSpec)
	path := filepath.Join(t.TempDir(), "nested", "swagger-explorer.yaml")

	if _, err := runCLI(t, "--spec", specPath, "init", "--out", path); err != nil {
		t.Fatalf("init: %v", err)
	}

	// The generated file must be accepted as a config file as-is.
	out, err := runCLI(t, "-c", path, "info")
	if err != nil {
		t.Fatalf("info with generated config: %v", err)
	}
	if !strings.Contains(out, "Pet Store") {
		t.Fatalf("unexpected info output: %s", out)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "x" {
		t.Fatalf("expected file to be overwritten")
	}
}
