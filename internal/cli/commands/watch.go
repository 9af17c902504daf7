package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/watcher"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <live-url> <output-file>",
		Short: "Mirror a live stage to a local file as it changes",
		Long: `Subscribes to a live stage and keeps a local snapshot of it on
disk. Every change is debounced and then written atomically, so the output
file always holds a complete stage. Runs until interrupted.`,
		Example: `  # Mirror a live stage to disk
  stagelink watch stage://localhost/Users/alice/helloworld.live snapshot.stage`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			w, err := watcher.New(watcher.Config{
				Client:   cmdCtx.Client,
				Logger:   cmdCtx.Logger,
				Debounce: debounce,
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context(), args[0], args[1])
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before writing a snapshot")
	return cmd
}
