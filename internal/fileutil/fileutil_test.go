package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.pdf")

	if err := WriteFileAtomic(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "%PDF-1.4" {
		t.Fatalf("content mismatch: %q", got)
	}

	// Overwrite goes through the same rename path.
	if err := WriteFileAtomic(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Fatalf("overwrite mismatch: %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left next to target: %v", entries)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Clair de Lune", "Clair de Lune"},
		{"Sonata: No. 14", "Sonata- No. 14"},
		{"A/B\\C", "A-B-C"},
		{"What?", "What"},
		{"  spaced  ", "spaced"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnsureDirRejectsEmpty(t *testing.T) {
	if err := EnsureDir("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
