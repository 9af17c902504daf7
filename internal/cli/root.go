// Package cli provides the command-line interface for Stagelink.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/cli/commands"
	"github.com/stagelink-labs/stagelink/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stagelink",
		Short: "Stagelink - stage samples and hub utilities",
		Long: `Stagelink bundles the stage samples and hub utilities: the hello
world scene builder, live session editing, a live stage watcher, a sensor
bridge, asset validation, and file utilities for browsing and editing hub
content.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd, cfg)

			ctx := context.WithValue(cmd.Context(), config.ConfigKey(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Stage samples and hub utilities
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./stagelink.yaml)")
	rootCmd.PersistentFlags().String("root", "", "local folder backing the hub")
	rootCmd.PersistentFlags().String("username", "", "username reported to samples and channels")
	rootCmd.PersistentFlags().String("base-url", "", "default base URL for samples")
	rootCmd.PersistentFlags().String("resources-dir", "", "local folder with sample Materials/ and Props/")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewHelloWorldCommand())
	rootCmd.AddCommand(commands.NewLiveSessionCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewSensorCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewTestAllCommand())
	rootCmd.AddCommand(commands.NewStatCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewCopyCommand())
	rootCmd.AddCommand(commands.NewMoveCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewMkdirCommand())
	rootCmd.AddCommand(commands.NewCheckpointsCommand())
	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger: text on stderr, debug when verbose,
// silent otherwise so tables and prompts stay clean.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if !cfg.Verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// Execute runs the root command with a context that ends on SIGINT or
// SIGTERM, so long-running commands (sensor, watch, live-session) shut
// down cleanly instead of being killed mid-write.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Stagelink.

To load completions:

Bash:
  $ source <(stagelink completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ stagelink completion bash > /etc/bash_completion.d/stagelink
  # macOS:
  $ stagelink completion bash > $(brew --prefix)/etc/bash_completion.d/stagelink

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ stagelink completion zsh > "${fpath[1]}/_stagelink"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ stagelink completion fish | source

  # To load completions for each session, execute once:
  $ stagelink completion fish > ~/.config/fish/completions/stagelink.fish

PowerShell:
  PS> stagelink completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> stagelink completion powershell > stagelink.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
