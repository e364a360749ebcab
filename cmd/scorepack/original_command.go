package main

import (
	"github.com/spf13/cobra"
)

func newOriginalCommand(ctx *commandContext) *cobra.Command {
	originalCmd := &cobra.Command{
		Use:   "original",
		Short: "Work with the embedded source document",
	}
	originalCmd.AddCommand(newOriginalExportCommand(ctx))
	return originalCmd
}

func newOriginalExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <container>",
		Short: "Export the verbatim source document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveContainerPath(args[0])
			if err != nil {
				return err
			}
			conv, err := ctx.converter()
			if err != nil {
				return err
			}

			original, err := conv.ExtractOriginal(path)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, original)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Destination file (- for stdout)")
	return cmd
}
