package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/burnin"
	"subburn/internal/config"
	"subburn/internal/daemon"
	"subburn/internal/extraction"
	"subburn/internal/logging"
	"subburn/internal/notifications"
	"subburn/internal/queue"
	"subburn/internal/stageexec"
	"subburn/internal/transcription"
)

// newRunCommand processes a single file through the full pipeline without a
// daemon: extract, transcribe, burn in.
func newRunCommand(ctx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Caption a single video file synchronously",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

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

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			item, err := store.NewFile(cmd.Context(), absPath, normalized)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processing %s (item #%d)\n", filepath.Base(absPath), item.ID)

			notifier := notifications.NewService(cfg)
			stages := []struct {
				name       string
				handler    stageexec.Handler
				processing queue.Status
				done       queue.Status
			}{
				{"extraction", extraction.NewExtractor(cfg, store, logger), queue.StatusExtracting, queue.StatusExtracted},
				{"transcription", transcription.NewTranscriber(cfg, store, logger), queue.StatusTranscribing, queue.StatusTranscribed},
				{"burnin", burnin.NewBurner(cfg, store, logger), queue.StatusBurning, queue.StatusCompleted},
			}

			for _, st := range stages {
				fmt.Fprintf(out, "Running %s...\n", st.name)
				err := stageexec.Run(cmd.Context(), stageexec.Options{
					Logger:     logger,
					Store:      store,
					Notifier:   notifier,
					Handler:    st.handler,
					StageName:  st.name,
					Processing: st.processing,
					Done:       st.done,
					Item:       item,
				})
				if err != nil {
					return fmt.Errorf("%s failed: %w", st.name, err)
				}
			}

			fmt.Fprintf(out, "Subtitles: %s\n", item.SubtitleFile)
			fmt.Fprintf(out, "Output: %s\n", item.OutputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Spoken language hint for transcription (e.g. en); omit to auto-detect")
	return cmd
}
