package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"scorepack/internal/config"
)

const gib = 1 << 30

// Result captures the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least needBytes
// available.
func CheckFreeSpace(name, path string, needBytes uint64) Result {
	avail, err := FreeSpace(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	if avail < needBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, need %.1f GiB)",
			path, float64(avail)/gib, float64(needBytes)/gib)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, float64(avail)/gib)}
}

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// ForConversion runs the checks a conversion depends on. estimatedBytes is
// the expected container size (source plus rendered pages); the configured
// free-space floor applies when it is larger.
func ForConversion(cfg *config.Config, estimatedBytes uint64) error {
	need := uint64(cfg.Packaging.MinFreeSpaceGiB) * gib
	// Temp file and final container can briefly coexist.
	if doubled := estimatedBytes * 2; doubled > need {
		need = doubled
	}

	results := []Result{
		CheckDirectoryAccess("library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("staging directory", cfg.Paths.StagingDir),
		CheckFreeSpace("library free space", cfg.Paths.LibraryDir, need),
	}

	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) > 0 {
		return errors.New("preflight failed: " + strings.Join(failures, "; "))
	}
	return nil
}
