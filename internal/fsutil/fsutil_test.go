package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAtomicCreateAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.bin")

	if Exists(path) {
		t.Fatalf("Exists on missing file = true")
	}
	if err := WriteAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	if b, err := os.ReadFile(path); err != nil || string(b) != "one" {
		t.Fatalf("read back: %q, %v", b, err)
	}

	if err := WriteAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteAtomic overwrite: %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "two" {
		t.Fatalf("overwrite read back: %q", b)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file %q left behind", e.Name())
		}
	}
}

func TestRemoveMissingIsFine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone")

	if err := Remove(path); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if err := WriteAtomic(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if Exists(path) {
		t.Fatalf("file survived Remove")
	}
}
