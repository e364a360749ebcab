package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scorepack/internal/config"
	"scorepack/internal/fileutil"
)

func parsePageArg(arg string) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page number %q", arg)
	}
	return page, nil
}

func resolveContainerPath(arg string) (string, error) {
	path := strings.TrimSpace(arg)
	if path == "" {
		return "", fmt.Errorf("container path is required")
	}
	return config.ExpandPath(path)
}

// readInput reads from path, or from the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", expanded, err)
	}
	return data, nil
}

// writeOutput writes to path, or to the command's stdout when path is "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(expanded, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", expanded, len(data))
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
