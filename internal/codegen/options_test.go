package codegen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kiln/internal/codegen"
)

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiln.toml")
	manifest := "[emit]\n" +
		"package = \"chip_pkg\"\n" +
		"header = \"chip_defs.svh\"\n"
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	opts, err := codegen.LoadOptions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := codegen.Options{PackageName: "chip_pkg", HeaderName: "chip_defs.svh"}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	if _, err := codegen.LoadOptions(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected an error for a missing manifest")
	}
}

func TestLoadOptionsEmptySection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiln.toml")
	if err := os.WriteFile(path, []byte("[other]\nx = 1\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	opts, err := codegen.LoadOptions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts != (codegen.Options{}) {
		t.Fatalf("expected zero options, got %+v", opts)
	}
}
