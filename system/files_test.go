package system

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFileWritesOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	content := []byte("[build]\nrustflags = [\"-L\", \"native/lib\"]\n")

	wrote, err := EnsureFile(path, content, 0o644)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if !wrote {
		t.Fatal("first call reported no write")
	}

	// Converged: the second call must not touch the file.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	before := info.ModTime()

	wrote, err = EnsureFile(path, content, 0o644)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if wrote {
		t.Fatal("second call rewrote identical content")
	}
	info, err = os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(before) {
		t.Fatal("file modified despite matching content")
	}
}

func TestEnsureFileReplacesDivergedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.service")

	if _, err := EnsureFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	wrote, err := EnsureFile(path, []byte("new"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if !wrote {
		t.Fatal("diverged content not rewritten")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content = %q, want %q", got, "new")
	}
}

func TestEnsureFileSetsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridgectl")

	if _, err := EnsureFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("mode = %o, want 755", info.Mode().Perm())
	}
}

func TestFileMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	ok, err := FileMatches(path, []byte("x"))
	if err != nil || ok {
		t.Fatalf("missing file: ok=%t err=%v", ok, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = FileMatches(path, []byte("x"))
	if err != nil || !ok {
		t.Fatalf("matching file: ok=%t err=%v", ok, err)
	}
}
