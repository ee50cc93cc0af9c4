package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/daemon"
	"subburn/internal/ipc"
	"subburn/internal/queue"
)

func newAddFileCommand(ctx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "add-file <path>",
		Short: "Add a video file to the captioning queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if !daemon.SupportedExtension(ext) {
				return fmt.Errorf("unsupported file extension %q (supported: %s)", ext, strings.Join(daemon.SupportedExtensions(), ", "))
			}

			normalized, err := config.NormalizeLanguage(language)
			if err != nil {
				return err
			}

			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				if client != nil {
					resp, err := client.AddFile(absPath, normalized)
					if err != nil {
						return err
					}
					if resp == nil {
						return errors.New("empty response from daemon")
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item #%d\n", filepath.Base(absPath), resp.Item.ID)
					return nil
				}

				item, err := store.NewFile(cmd.Context(), absPath, normalized)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item #%d\n", filepath.Base(absPath), item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Spoken language hint for transcription (e.g. en); omit to auto-detect")
	return cmd
}
