package main

import (
	"github.com/spf13/cobra"
)

func newPageCommand(ctx *commandContext) *cobra.Command {
	pageCmd := &cobra.Command{
		Use:   "page",
		Short: "Work with individual container pages",
	}
	pageCmd.AddCommand(newPageExportCommand(ctx))
	return pageCmd
}

func newPageExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <container> <page>",
		Short: "Export one page's raster image",
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

			image, err := svc.ReadPageImage(path, page)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, image)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Destination file (- for stdout)")
	return cmd
}
