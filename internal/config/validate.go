package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePackaging()
}

func (c *Config) validatePaths() error {
	for name, dir := range map[string]string{
		"paths.library_dir": c.Paths.LibraryDir,
		"paths.staging_dir": c.Paths.StagingDir,
		"paths.log_dir":     c.Paths.LogDir,
	} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validatePackaging() error {
	if c.Packaging.WriteLockTimeoutSeconds < 1 {
		return fmt.Errorf("packaging.write_lock_timeout_seconds must be positive, got %d",
			c.Packaging.WriteLockTimeoutSeconds)
	}
	if c.Packaging.MinFreeSpaceGiB < 0 {
		return fmt.Errorf("packaging.min_free_space_gib must not be negative, got %d",
			c.Packaging.MinFreeSpaceGiB)
	}
	if c.Queue.PollSeconds < 1 {
		return fmt.Errorf("queue.poll_seconds must be positive, got %d", c.Queue.PollSeconds)
	}
	return nil
}
