package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/cli/config"
)

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell for browsing and editing hub content",
		Example: `  # Start the shell against the default hub root
  stagelink shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("shell requires an interactive terminal")
			}

			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			return runShell(cmd, cmdCtx)
		},
	}
}

func runShell(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stagelink> ",
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    newShellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stagelink shell (root: %s)\n", cfg.Root)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type help for commands, exit to quit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		verb := strings.ToLower(fields[0])
		if verb == "exit" || verb == "quit" {
			break
		}

		if err := runShellVerb(ctx, cmd, cmdCtx.Client, verb, fields[1:]); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	return nil
}

func runShellVerb(ctx context.Context, cmd *cobra.Command, client asset.Client, verb string, args []string) error {
	out := cmd.OutOrStdout()

	switch verb {
	case "help":
		printShellHelp(out)
		return nil

	case "stat":
		if len(args) != 1 {
			return fmt.Errorf("usage: stat <url>")
		}
		entry, err := client.Stat(ctx, args[0])
		if err != nil {
			return err
		}
		kind := "file"
		if entry.IsDir {
			kind = "folder"
		}
		_, _ = fmt.Fprintf(out, "%s  %s  %d bytes  %s\n",
			entry.Name, kind, entry.Size, entry.ModTime.Format("2006-01-02 15:04:05"))
		return nil

	case "list", "ls":
		if len(args) != 1 {
			return fmt.Errorf("usage: list <url>")
		}
		entries, err := client.List(ctx, args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			_, _ = fmt.Fprintln(out, "(empty)")
			return nil
		}
		for _, entry := range entries {
			name := entry.Name
			if entry.IsDir {
				name += "/"
			}
			_, _ = fmt.Fprintln(out, name)
		}
		return nil

	case "copy", "cp":
		if len(args) != 2 {
			return fmt.Errorf("usage: copy <src> <dst>")
		}
		return client.Copy(ctx, args[0], args[1])

	case "move", "mv":
		if len(args) != 2 {
			return fmt.Errorf("usage: move <src> <dst>")
		}
		return client.Move(ctx, args[0], args[1])

	case "delete", "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <url>")
		}
		return client.Delete(ctx, args[0])

	case "mkdir":
		if len(args) != 1 {
			return fmt.Errorf("usage: mkdir <url>")
		}
		return client.CreateFolder(ctx, args[0])

	case "checkpoints":
		if len(args) != 1 {
			return fmt.Errorf("usage: checkpoints <url>")
		}
		checkpoints, err := client.Checkpoints(ctx, args[0])
		if err != nil {
			return err
		}
		if len(checkpoints) == 0 {
			_, _ = fmt.Fprintln(out, "(no checkpoints)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Comment", "Created"})
		for _, cp := range checkpoints {
			t.AppendRow(table.Row{cp.ID, cp.Comment, cp.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		t.Render()
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type help for commands)", verb)
	}
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  stat <url>            Show file or folder details
  list <url>            List folder contents
  copy <src> <dst>      Copy a file or folder
  move <src> <dst>      Move a file or folder
  delete <url>          Delete a file or folder
  mkdir <url>           Create a folder
  checkpoints <url>     Show the checkpoints of a file
  help                  Show this help message
  exit                  Exit the shell

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for command names
`
	_, _ = fmt.Fprintln(w, help)
}

func newShellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("stat"),
		readline.PcItem("list"),
		readline.PcItem("ls"),
		readline.PcItem("copy"),
		readline.PcItem("move"),
		readline.PcItem("delete"),
		readline.PcItem("mkdir"),
		readline.PcItem("checkpoints"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}
