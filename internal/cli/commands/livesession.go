package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/samples/livesession"
)

// NewLiveSessionCommand creates the live-session command.
func NewLiveSessionCommand() *cobra.Command {
	var primPath string

	cmd := &cobra.Command{
		Use:   "live-session <stage-url>",
		Short: "Join a live stage and edit it interactively",
		Long: `Opens a live stage, joins its message channel, and starts an
interactive editor. Press t to nudge the target prim along a circle, m to
send a message to the other participants, l to leave the channel, and q to
quit.`,
		Example: `  # Join a live stage and edit its first mesh
  stagelink live-session stage://localhost/Users/alice/helloworld.live`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			session, err := livesession.New(cmd.Context(), cmdCtx.Client, cmdCtx.Logger, args[0], primPath)
			if err != nil {
				return fmt.Errorf("start live session: %w", err)
			}
			defer session.Close()

			return livesession.Run(cmd.Context(), session)
		},
	}

	cmd.Flags().StringVar(&primPath, "prim", "", "path of the prim to edit (defaults to the first mesh)")
	return cmd
}
