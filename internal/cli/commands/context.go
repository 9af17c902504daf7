// Package commands implements the stagelink subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/asset/localfs"
	"github.com/stagelink-labs/stagelink/internal/cli/config"
)

// CommandContext bundles what every command needs: the loaded config, a
// logger and an open hub client.
type CommandContext struct {
	Config *config.Config
	Logger *slog.Logger
	Client asset.Client
}

// NewCommandContext builds the context for a command invocation. The
// caller owns the client and must Close it.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	client, err := localfs.New(localfs.Config{
		Root:     cfg.Root,
		Username: cfg.Username,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open hub at %s: %w", cfg.Root, err)
	}

	return &CommandContext{Config: cfg, Logger: logger, Client: client}, nil
}

// Close releases the client.
func (c *CommandContext) Close() {
	_ = c.Client.Close()
}
