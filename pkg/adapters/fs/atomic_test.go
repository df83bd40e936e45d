package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Writes And Replaces Content", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "data.json")

		if err := WriteFileAtomic(target, []byte("[1]"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := WriteFileAtomic(target, []byte("[2]"), 0644); err != nil {
			t.Fatalf("rewrite failed: %v", err)
		}

		data, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(data) != "[2]" {
			t.Errorf("expected replaced content, got %q", data)
		}
	})

	t.Run("Leaves No Temp Files Behind", func(t *testing.T) {
		dir := t.TempDir()
		if err := WriteFileAtomic(filepath.Join(dir, "data.json"), []byte("[]"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir failed: %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Fails For Missing Directory", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "nope", "data.json")
		if err := WriteFileAtomic(target, []byte("[]"), 0644); err == nil {
			t.Error("expected error for missing parent directory")
		}
	})
}
