package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCopyCommand creates the copy command.
func NewCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "copy <src> <dst>",
		Aliases: []string{"cp"},
		Short:   "Copy a file or folder, overwriting the destination",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			if err := cmdCtx.Client.Copy(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("copy %s to %s: %w", args[0], args[1], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewMoveCommand creates the move command.
func NewMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "move <src> <dst>",
		Aliases: []string{"mv"},
		Short:   "Move a file or folder, overwriting the destination",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			if err := cmdCtx.Client.Move(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("move %s to %s: %w", args[0], args[1], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <url>",
		Aliases: []string{"rm"},
		Short:   "Delete a file or folder recursively",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			if err := cmdCtx.Client.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// NewMkdirCommand creates the mkdir command.
func NewMkdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <url>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			if err := cmdCtx.Client.CreateFolder(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("mkdir %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", args[0])
			return nil
		},
	}
}
