package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// LibraryDir holds finished .scorepack containers.
	LibraryDir string `toml:"library_dir"`
	// StagingDir receives conversion inputs and scratch space.
	StagingDir string `toml:"staging_dir"`
	// LogDir holds logs and the conversion queue database.
	LogDir string `toml:"log_dir"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Packaging tunes the container write path.
type Packaging struct {
	// WriteLockTimeoutSeconds bounds how long a writer waits for the
	// per-container lock before failing busy.
	WriteLockTimeoutSeconds int `toml:"write_lock_timeout_seconds"`
	// MinFreeSpaceGiB is the free-space floor the conversion preflight
	// requires in the staging and library directories.
	MinFreeSpaceGiB int `toml:"min_free_space_gib"`
}

// Queue tunes the conversion queue runner.
type Queue struct {
	PollSeconds int `toml:"poll_seconds"`
}

// Config is the root configuration record.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
	Packaging Packaging `toml:"packaging"`
	Queue     Queue     `toml:"queue"`
}

// DefaultConfigPath returns the expanded default config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scorepack/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded; a missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("scorepack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	defaults := Default()
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaults.Paths.LibraryDir
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaults.Paths.StagingDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}
	for _, field := range []*string{&c.Paths.LibraryDir, &c.Paths.StagingDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}

	if c.Packaging.WriteLockTimeoutSeconds == 0 {
		c.Packaging.WriteLockTimeoutSeconds = defaults.Packaging.WriteLockTimeoutSeconds
	}
	if c.Packaging.MinFreeSpaceGiB == 0 {
		c.Packaging.MinFreeSpaceGiB = defaults.Packaging.MinFreeSpaceGiB
	}
	if c.Queue.PollSeconds == 0 {
		c.Queue.PollSeconds = defaults.Queue.PollSeconds
	}
	return nil
}

// EnsureDirectories creates the directories the system writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteLockTimeout returns the container write-lock timeout as a duration.
func (c *Config) WriteLockTimeout() time.Duration {
	return time.Duration(c.Packaging.WriteLockTimeoutSeconds) * time.Second
}

// QueuePollInterval returns the queue runner idle poll interval.
func (c *Config) QueuePollInterval() time.Duration {
	return time.Duration(c.Queue.PollSeconds) * time.Second
}

// QueueDatabasePath returns the conversion queue database location.
func (c *Config) QueueDatabasePath() string {
	return filepath.Join(c.Paths.LogDir, "convert-queue.db")
}

// LogFilePath returns the main log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "scorepack.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
