package fileio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic_WritesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.json")
	if err := WriteAtomic(path, ".categories", []byte(`{"nodes":[]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(got) != `{"nodes":[]}` {
		t.Errorf("content = %q", got)
	}
}

func TestWriteAtomic_LeavesNoFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "categories.json")
	if err := WriteAtomic(path, ".categories", []byte("x")); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file must not exist after a failed write")
	}
}

func TestWriteAtomic_RefusesReadOnlyTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("old"), 0o444); err != nil {
		t.Fatal(err)
	}
	if err := WriteAtomic(path, ".history", []byte("new")); err == nil {
		t.Fatal("expected error for read-only file")
	}
	got, _ := os.ReadFile(path)
	if string(got) != "old" {
		t.Errorf("read-only file was modified: %q", got)
	}
}

func TestReadIfExists(t *testing.T) {
	dir := t.TempDir()
	got, err := ReadIfExists(filepath.Join(dir, "absent.json"))
	if err != nil || got != nil {
		t.Errorf("ReadIfExists(absent) = %q, %v; want nil, nil", got, err)
	}
	path := filepath.Join(dir, "present.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = ReadIfExists(path)
	if err != nil || string(got) != "{}" {
		t.Errorf("ReadIfExists(present) = %q, %v", got, err)
	}
}
