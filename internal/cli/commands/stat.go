package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewStatCommand creates the stat command.
func NewStatCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stat <url>",
		Short: "Show details for a file or folder",
		Example: `  # Stat a stage on the hub
  stagelink stat stage://localhost/Projects/scene.stage

  # Stat a local path
  stagelink stat ./scene.stage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			entry, err := cmdCtx.Client.Stat(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("stat %s: %w", args[0], err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entry)
			}

			kind := "file"
			if entry.IsDir {
				kind = "folder"
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Type", "Size", "Modified"})
			t.AppendRow(table.Row{entry.Name, kind, entry.Size, entry.ModTime.Format("2006-01-02 15:04:05")})
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
