package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scorepack/internal/overlay"
	"scorepack/internal/pack"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <container>",
		Short: "Check a container's structure and annotation payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveContainerPath(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.archiveStore()
			if err != nil {
				return err
			}
			h, err := store.Open(path)
			if err != nil {
				return err
			}
			defer h.Close()

			m, err := pack.ReadManifest(h)
			if err != nil {
				return err
			}

			// The manifest check covers the entry set; overlays still need a
			// decode pass to catch malformed payloads.
			annotated := 0
			for _, name := range h.List() {
				page, ok := pack.AnnotationPage(name)
				if !ok {
					continue
				}
				data, err := h.Read(name)
				if err != nil {
					return err
				}
				if _, err := overlay.Decode(data); err != nil {
					return fmt.Errorf("page %d annotations: %w", page, err)
				}
				annotated++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Container valid: %q, %d pages, %d annotated\n", m.Title, m.PageCount, annotated)
			return nil
		},
	}
}
