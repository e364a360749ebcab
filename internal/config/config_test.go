package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scorepack/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config, resolved %s as existing", path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Packaging.WriteLockTimeoutSeconds != 10 {
		t.Fatalf("unexpected lock timeout: %d", cfg.Packaging.WriteLockTimeoutSeconds)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) {
		t.Fatalf("library dir not expanded: %q", cfg.Paths.LibraryDir)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
library_dir = "` + dir + `/lib"
staging_dir = "` + dir + `/staging"
log_dir = "` + dir + `/logs"

[logging]
level = "DEBUG"
format = "json"

[packaging]
write_lock_timeout_seconds = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolution mismatch: %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.WriteLockTimeout().Seconds() != 3 {
		t.Fatalf("lock timeout: %v", cfg.WriteLockTimeout())
	}
	if cfg.QueueDatabasePath() != filepath.Join(dir, "logs", "convert-queue.db") {
		t.Fatalf("queue db path: %q", cfg.QueueDatabasePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantSub string
	}{
		{"bad level", "[logging]\nlevel = \"verbose\"\n", "logging.level"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"negative timeout", "[packaging]\nwrite_lock_timeout_seconds = -1\n", "write_lock_timeout_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("expected %q error, got %v", tc.wantSub, err)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(dir, "lib")
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.Paths.LibraryDir, cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing: %v", d, err)
		}
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}

	// The shipped sample must itself load cleanly.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
