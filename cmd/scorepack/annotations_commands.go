package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scorepack/internal/overlay"
)

func newAnnotationsCommand(ctx *commandContext) *cobra.Command {
	annotationsCmd := &cobra.Command{
		Use:   "annotations",
		Short: "Read and edit per-page annotation overlays",
	}

	annotationsCmd.AddCommand(newAnnotationsGetCommand(ctx))
	annotationsCmd.AddCommand(newAnnotationsSetCommand(ctx))
	annotationsCmd.AddCommand(newAnnotationsStripCommand(ctx))

	return annotationsCmd
}

func newAnnotationsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <container> <page>",
		Short: "Print one page's overlay as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveContainerPath(args[0])
			if err != nil {
				return err
			}
			page, err := parsePageArg(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.scoreService()
			if err != nil {
				return err
			}

			ov, err := svc.ReadPageAnnotations(path, page)
			if err != nil {
				return err
			}
			payload, err := overlay.Encode(ov)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}

func newAnnotationsSetCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "set <container> <page>",
		Short: "Replace one page's overlay from a JSON payload",
		Long: `Replace one page's overlay from a JSON payload.

An empty payload clears the page; the annotation entry is removed rather
than stored empty.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveContainerPath(args[0])
			if err != nil {
				return err
			}
			page, err := parsePageArg(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.scoreService()
			if err != nil {
				return err
			}

			payload, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			ov, err := overlay.Decode(payload)
			if err != nil {
				return err
			}
			if err := svc.WritePageAnnotations(cmd.Context(), path, page, ov); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ov.Empty() {
				fmt.Fprintf(out, "Cleared annotations on page %d\n", page)
			} else {
				fmt.Fprintf(out, "Wrote %d annotation items to page %d\n", len(ov), page)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "file", "f", "-", "Overlay JSON file (- for stdin)")
	return cmd
}

func newAnnotationsStripCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "strip <container>",
		Short: "Remove every annotation overlay from a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveContainerPath(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.scoreService()
			if err != nil {
				return err
			}

			stripped, err := svc.StripAnnotations(cmd.Context(), path)
			if err != nil {
				return err
			}
			if stripped == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Container has no annotations")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stripped annotations from %d pages\n", stripped)
			return nil
		},
	}
}
