package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewCheckpointsCommand creates the checkpoints command.
func NewCheckpointsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "checkpoints <url>",
		Short: "List the checkpoints recorded for a file",
		Example: `  # Show the save history of a stage
  stagelink checkpoints stage://localhost/Users/alice/helloworld.stage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			checkpoints, err := cmdCtx.Client.Checkpoints(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("checkpoints for %s: %w", args[0], err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(checkpoints)
			}

			if len(checkpoints) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no checkpoints)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Comment", "Created"})
			for _, cp := range checkpoints {
				t.AppendRow(table.Row{cp.ID, cp.Comment, cp.CreatedAt.Format("2006-01-02 15:04:05")})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d checkpoints)\n", len(checkpoints))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
