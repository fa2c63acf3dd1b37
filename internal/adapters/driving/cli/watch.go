package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/logging"
	"github.com/docforge/docforge/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a folder and process dropped files",
	Long: `Watches a directory and mirrors supported files into the pipeline:
new files are uploaded and processed with the stored defaults, modified
files replace their document, deleted files remove it.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}
	if registry == nil {
		return errors.New("extractor registry not configured")
	}

	cfg, err := storeDefaults()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	events := pipeline.Subscribe()
	go func() {
		for ev := range events {
			if ev.Error != "" {
				cmd.PrintErrf("%s  %s: %s\n", ev.DocumentID, ev.Type, ev.Error)
				continue
			}
			cmd.Printf("%s  %s\n", ev.DocumentID, ev.Type)
		}
	}()

	cmd.Printf("Watching %s (ctrl-c to stop)\n", args[0])
	w := watcher.New(pipeline, registry, cfg, logging.New(logging.DevelopmentLogger()))
	if err := w.Run(ctx, args[0]); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
