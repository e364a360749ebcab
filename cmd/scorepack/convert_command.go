package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scorepack/internal/config"
	"scorepack/internal/convert"
	"scorepack/internal/pipeline"
	"scorepack/internal/preflight"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var pagesDir string
	var title string
	var output string

	cmd := &cobra.Command{
		Use:   "convert <source-document>",
		Short: "Package a source document and its rendered pages into a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			conv, err := ctx.converter()
			if err != nil {
				return err
			}

			sourcePath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			original, err := os.ReadFile(sourcePath)
			if err != nil {
				return fmt.Errorf("read source document: %w", err)
			}

			dir, err := config.ExpandPath(pagesDir)
			if err != nil {
				return err
			}
			pages, err := pipeline.LoadRenderedPages(dir)
			if err != nil {
				return err
			}

			estimated := uint64(len(original))
			for _, page := range pages {
				estimated += uint64(len(page))
			}
			if err := preflight.ForConversion(cfg, estimated); err != nil {
				return err
			}

			resolvedTitle := strings.TrimSpace(title)
			if resolvedTitle == "" {
				resolvedTitle = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
			}

			targetPath := strings.TrimSpace(output)
			if targetPath == "" {
				targetPath, err = pipeline.TargetPath(cfg.Paths.LibraryDir, resolvedTitle)
				if err != nil {
					return err
				}
			} else if targetPath, err = config.ExpandPath(targetPath); err != nil {
				return err
			}

			if err := conv.Convert(cmd.Context(), convert.Request{
				Title:      resolvedTitle,
				Original:   original,
				Pages:      pages,
				TargetPath: targetPath,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Packaged %d pages into %s\n", len(pages), targetPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pagesDir, "pages", "p", "", "Directory of rendered page images (required)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Score title (defaults to the source file name)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Container path (defaults to the library directory)")
	_ = cmd.MarkFlagRequired("pages")
	return cmd
}
