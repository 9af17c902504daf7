package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list <url>",
		Aliases: []string{"ls"},
		Short:   "List the contents of a folder",
		Example: `  # List a project folder
  stagelink list stage://localhost/Projects`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			entries, err := cmdCtx.Client.List(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("list %s: %w", args[0], err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Type", "Size", "Modified"})
			for _, entry := range entries {
				kind := "file"
				size := fmt.Sprintf("%d", entry.Size)
				if entry.IsDir {
					kind = "folder"
					size = ""
				}
				t.AppendRow(table.Row{entry.Name, kind, size, entry.ModTime.Format("2006-01-02 15:04:05")})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d entries)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
