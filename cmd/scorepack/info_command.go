package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"scorepack/internal/pack"
)

type containerInfo struct {
	Path           string `json:"path"`
	FormatVersion  int    `json:"formatVersion"`
	Title          string `json:"title"`
	CreatedAt      string `json:"createdAt"`
	PageCount      int    `json:"pageCount"`
	AnnotatedPages []int  `json:"annotatedPages"`
	OriginalBytes  int64  `json:"originalBytes"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <container>",
		Short: "Show a container's manifest and annotation summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveContainerPath(args[0])
			if err != nil {
				return err
			}
			info, err := loadContainerInfo(ctx, path)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, info)
			}

			rows := [][]string{
				{"Title", info.Title},
				{"Format version", strconv.Itoa(info.FormatVersion)},
				{"Created", info.CreatedAt},
				{"Pages", strconv.Itoa(info.PageCount)},
				{"Annotated pages", formatPageList(info.AnnotatedPages)},
				{"Original size", fmt.Sprintf("%d bytes", info.OriginalBytes)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func loadContainerInfo(ctx *commandContext, path string) (containerInfo, error) {
	store, err := ctx.archiveStore()
	if err != nil {
		return containerInfo{}, err
	}
	h, err := store.Open(path)
	if err != nil {
		return containerInfo{}, err
	}
	defer h.Close()

	m, err := pack.ReadManifest(h)
	if err != nil {
		return containerInfo{}, err
	}

	var annotated []int
	for _, name := range h.List() {
		if page, ok := pack.AnnotationPage(name); ok {
			annotated = append(annotated, page)
		}
	}
	sort.Ints(annotated)

	return containerInfo{
		Path:           h.Path(),
		FormatVersion:  m.FormatVersion,
		Title:          m.Title,
		CreatedAt:      m.CreatedAt.Format("2006-01-02 15:04:05 MST"),
		PageCount:      m.PageCount,
		AnnotatedPages: annotated,
		OriginalBytes:  h.Sizes()[m.Original],
	}, nil
}

func formatPageList(pages []int) string {
	if len(pages) == 0 {
		return "none"
	}
	out := ""
	for i, page := range pages {
		if i > 0 {
			out += ", "
		}
		out += strconv.Itoa(page)
	}
	return out
}
