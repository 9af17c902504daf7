package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/cli/config"
	"github.com/stagelink-labs/stagelink/internal/samples/helloworld"
	"github.com/stagelink-labs/stagelink/internal/samples/livesession"
)

// NewHelloWorldCommand creates the hello-world sample command.
func NewHelloWorldCommand() *cobra.Command {
	var (
		path     string
		live     bool
		existing string
		fail     bool
	)

	cmd := &cobra.Command{
		Use:   "hello-world",
		Short: "Build the sample stage with geometry, lights, and materials",
		Long: `Builds a sample stage on the hub from scratch: a textured box, a
dynamic cube, a quad with collision, a distant light, a dome light, and a
referenced prop. With --live the stage is created as a live layer and the
command drops into the interactive live session editor afterwards.`,
		Example: `  # Create the stage under your user folder
  stagelink hello-world

  # Create a live stage and start editing it
  stagelink hello-world --live

  # Open an existing stage and find its first mesh
  stagelink hello-world --existing stage://localhost/Users/alice/helloworld.stage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			cfg := config.GetConfig(cmd.Context())
			sample, err := helloworld.New(cmdCtx.Client, cmdCtx.Logger, helloworld.Options{
				Path:         path,
				Live:         live,
				Existing:     existing,
				Fail:         fail,
				ResourcesDir: cfg.ResourcesDir,
			})
			if err != nil {
				return err
			}

			result, err := sample.Run(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stage: %s\n", result.StageURL)

			if !live || result.MeshPath == "" {
				return nil
			}

			session, err := livesession.New(cmd.Context(), cmdCtx.Client, cmdCtx.Logger, result.StageURL, result.MeshPath)
			if err != nil {
				return fmt.Errorf("start live session: %w", err)
			}
			defer session.Close()

			return livesession.Run(cmd.Context(), session)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "destination folder for the stage (defaults to your user folder)")
	cmd.Flags().BoolVarP(&live, "live", "l", false, "create a live stage and start a live session on it")
	cmd.Flags().StringVarP(&existing, "existing", "e", "", "open an existing stage instead of creating one")
	cmd.Flags().BoolVarP(&fail, "fail", "f", false, "add a cube without extents so validation fails")
	return cmd
}
