package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subburn/internal/api"
	"subburn/internal/ipc"
	"subburn/internal/queue"
)

var queueListColumns = []string{"ID", "Title", "Status", "Progress", "Language", "Created"}

var queueListAlignments = []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the captioning queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueClearCompletedCommand(ctx))
	queueCmd.AddCommand(newQueueClearFailedCommand(ctx))
	queueCmd.AddCommand(newQueueResetCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				stats := make(map[string]int)
				if client != nil {
					status, err := client.Status()
					if err != nil {
						return err
					}
					stats = status.QueueStats
				} else {
					raw, err := store.Stats(cmd.Context())
					if err != nil {
						return err
					}
					for status, count := range raw {
						stats[string(status)] = count
					}
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.QueueStatsResponse{Counts: stats})
				}

				rows := buildQueueStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var items []ipc.QueueItem
				if client != nil {
					resp, err := client.QueueList(listStatuses)
					if err != nil {
						return err
					}
					items = resp.Items
				} else {
					var statuses []queue.Status
					for _, value := range listStatuses {
						parsed, ok := queue.ParseStatus(value)
						if !ok {
							return fmt.Errorf("unknown status %q", value)
						}
						statuses = append(statuses, parsed)
					}
					stored, err := store.List(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					items = api.FromQueueItems(stored)
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.QueueListResponse{Items: items})
				}

				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				table := renderTable(queueListColumns, buildQueueListRows(items), queueListAlignments)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itemID>",
		Short: "Show details for a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var item *ipc.QueueItem
				if client != nil {
					resp, err := client.QueueDescribe(id)
					if err != nil {
						return err
					}
					if resp != nil {
						item = &resp.Item
					}
				} else {
					stored, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if stored != nil {
						converted := api.FromQueueItem(stored)
						item = &converted
					}
				}
				if item == nil {
					return fmt.Errorf("queue item %d not found", id)
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, api.QueueItemResponse{Item: *item})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID: %d\n", item.ID)
				fmt.Fprintf(out, "Title: %s\n", item.Title)
				fmt.Fprintf(out, "Source: %s\n", item.SourcePath)
				fmt.Fprintf(out, "Language: %s\n", formatLanguage(item.Language))
				fmt.Fprintf(out, "Status: %s\n", formatStatusLabel(item.Status))
				fmt.Fprintf(out, "Progress: %s\n", formatProgress(*item))
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "Error: %s\n", item.ErrorMessage)
				}
				if item.AudioFile != "" {
					fmt.Fprintf(out, "Audio: %s\n", item.AudioFile)
				}
				if item.SubtitleFile != "" {
					fmt.Fprintf(out, "Subtitles: %s\n", item.SubtitleFile)
				}
				if item.OutputFile != "" {
					fmt.Fprintf(out, "Output: %s\n", item.OutputFile)
				}
				if item.NeedsReview {
					fmt.Fprintf(out, "Needs review: %s\n", item.ReviewReason)
				}
				if item.TranscriptPreview != "" {
					fmt.Fprintf(out, "Transcript preview: %s\n", item.TranscriptPreview)
				}
				fmt.Fprintf(out, "Created: %s\n", formatDisplayTime(item.CreatedAt))
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				var removed int64
				var err error

				switch {
				case clearCompleted:
					if client != nil {
						var resp *ipc.QueueClearCompletedResponse
						resp, err = client.QueueClearCompleted()
						if resp != nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearCompleted(cmd.Context())
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d completed items\n", removed)
				case clearFailed:
					if client != nil {
						var resp *ipc.QueueClearFailedResponse
						resp, err = client.QueueClearFailed()
						if resp != nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearFailed(cmd.Context())
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d failed items\n", removed)
				default:
					if client != nil {
						var resp *ipc.QueueClearResponse
						resp, err = client.QueueClear()
						if resp != nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.Clear(cmd.Context())
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d queue items\n", removed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed items")
	return cmd
}

func newQueueClearCompletedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Remove completed queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var removed int64
				if client != nil {
					resp, err := client.QueueClearCompleted()
					if err != nil {
						return err
					}
					removed = resp.Removed
				} else {
					var err error
					removed, err = store.ClearCompleted(cmd.Context())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed items\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var removed int64
				if client != nil {
					resp, err := client.QueueClearFailed()
					if err != nil {
						return err
					}
					removed = resp.Removed
				} else {
					var err error
					removed, err = store.ClearFailed(cmd.Context())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failed items\n", removed)
				return nil
			})
		},
	}
}

func newQueueResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Roll in-flight items back to their stage entry status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var updated int64
				if client != nil {
					resp, err := client.QueueReset()
					if err != nil {
						return err
					}
					updated = resp.Updated
				} else {
					var err error
					updated, err = store.ResetStuckProcessing(cmd.Context())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d items\n", updated)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [itemID...]",
		Short: "Retry failed queue items",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", arg)
				}
				ids = append(ids, id)
			}

			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				if client != nil {
					resp, err := client.QueueRetry(ids)
					if err != nil {
						return err
					}
					if len(ids) == 0 {
						fmt.Fprintf(out, "Retried %d failed items\n", resp.Updated)
					} else {
						fmt.Fprintf(out, "Retried %d of %d items\n", resp.Updated, len(ids))
					}
					return nil
				}

				if len(ids) == 0 {
					failed, err := store.List(cmd.Context(), queue.StatusFailed)
					if err != nil {
						return err
					}
					for _, item := range failed {
						ids = append(ids, item.ID)
					}
					var updated int64
					for _, id := range ids {
						if _, err := store.RetryFailed(cmd.Context(), id); err != nil {
							return err
						}
						updated++
					}
					fmt.Fprintf(out, "Retried %d failed items\n", updated)
					return nil
				}

				var updated int64
				for _, id := range ids {
					item, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if item == nil {
						fmt.Fprintf(out, "Item %d not found\n", id)
						continue
					}
					if item.Status != queue.StatusFailed {
						fmt.Fprintf(out, "Item %d is not in failed state\n", id)
						continue
					}
					if _, err := store.RetryFailed(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(out, "Item %d reset for retry\n", id)
					updated++
				}
				fmt.Fprintf(out, "Retried %d of %d items\n", updated, len(ids))
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <itemID...>",
		Short: "Remove specific queue items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", arg)
				}
				ids = append(ids, id)
			}

			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var removed int64
				if client != nil {
					resp, err := client.QueueRemove(ids)
					if err != nil {
						return err
					}
					removed = resp.Removed
				} else {
					for _, id := range ids {
						ok, err := store.Remove(cmd.Context(), id)
						if err != nil {
							return err
						}
						if ok {
							removed++
						}
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d of %d items\n", removed, len(ids))
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				var health queue.HealthSummary
				if client != nil {
					resp, err := client.QueueHealth()
					if err != nil {
						return err
					}
					health = queue.HealthSummary(*resp)
				} else {
					var err error
					health, err = store.Health(cmd.Context())
					if err != nil {
						return err
					}
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, health)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nPending: %d\nProcessing: %d\nFailed: %d\nCompleted: %d\n",
					health.Total,
					health.Pending,
					health.Processing,
					health.Failed,
					health.Completed,
				)
				return nil
			})
		},
	}
}
