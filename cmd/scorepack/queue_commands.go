package main

import (
	"fmt"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"scorepack/internal/config"
	"scorepack/internal/convert"
	"scorepack/internal/convertqueue"
	"scorepack/internal/logging"
	"scorepack/internal/pipeline"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the conversion queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueRunCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var pagesDir string
	var title string

	cmd := &cobra.Command{
		Use:   "add <source-document>",
		Short: "Enqueue a document for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(pagesDir)
			if err != nil {
				return err
			}
			return ctx.withQueue(func(store *convertqueue.Store) error {
				job, err := store.Add(cmd.Context(), sourcePath, dir, title)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d for %s\n", job.ID, sourcePath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&pagesDir, "pages", "p", "", "Directory of rendered page images (required)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Score title (defaults to the source file name)")
	_ = cmd.MarkFlagRequired("pages")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var byTitle bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(store *convertqueue.Store) error {
				jobs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				if filter := strings.TrimSpace(statusFilter); filter != "" {
					status := convertqueue.Status(strings.ToLower(filter))
					if !status.Valid() {
						return fmt.Errorf("unknown status %q", filter)
					}
					filtered := jobs[:0]
					for _, job := range jobs {
						if job.Status == status {
							filtered = append(filtered, job)
						}
					}
					jobs = filtered
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				if byTitle {
					// Language-aware ordering so accented titles file where a
					// musician expects them.
					c := collate.New(language.Und, collate.IgnoreCase)
					sort.SliceStable(jobs, func(i, j int) bool {
						return c.CompareString(jobs[i].Title, jobs[j].Title) < 0
					})
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					detail := job.TargetPath
					if job.Status == convertqueue.StatusFailed {
						detail = job.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(job.ID, 10),
						job.Title,
						string(job.Status),
						formatTimestamp(job.CreatedAt),
						detail,
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Created", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only show jobs in this status")
	cmd.Flags().BoolVar(&byTitle, "by-title", false, "Sort by title instead of queue order")
	return cmd
}

func newQueueRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process queued conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			archives, err := ctx.archiveStore()
			if err != nil {
				return err
			}

			return ctx.withQueue(func(store *convertqueue.Store) error {
				runner, err := pipeline.NewRunner(cfg, store, convert.New(archives, logger), logger)
				if err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := runner.Startup(runCtx); err != nil {
					return err
				}
				if watch {
					return runner.Watch(runCtx)
				}
				processed, err := runner.Drain(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d jobs\n", processed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling for new jobs until interrupted")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Requeue a failed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			return ctx.withQueue(func(store *convertqueue.Store) error {
				if err := store.Retry(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %d requeued\n", id)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished jobs from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(store *convertqueue.Store) error {
				statuses := []convertqueue.Status{convertqueue.StatusCompleted, convertqueue.StatusFailed}
				if all {
					statuses = nil
				}
				removed, err := store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d jobs\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Also remove pending and converting jobs")
	return cmd
}
