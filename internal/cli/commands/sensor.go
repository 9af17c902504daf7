package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/cli/config"
	"github.com/stagelink-labs/stagelink/internal/sensor"
)

// NewSensorCommand creates the sensor command.
func NewSensorCommand() *cobra.Command {
	var (
		cfgFile  string
		script   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sensor [base-url] [count] [lifetime]",
		Short: "Simulate sensors writing live transform updates",
		Long: `Creates a live stage with one cube per sensor and runs a worker
per cube that samples a signal and writes its position to the stage at a
fixed interval. The built-in signal orbits the origin; a Starlark script
exporting sample(t, index) can replace it.`,
		Example: `  # Four sensors for twenty seconds under the default base URL
  stagelink sensor

  # Eight sensors for a minute
  stagelink sensor stage://localhost/Projects/samplesTest 8 1m

  # Drive positions from a script
  stagelink sensor --script wave.star`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			cliCfg := config.GetConfig(cmd.Context())

			var cfg sensor.Config
			if cfgFile != "" {
				cfg, err = sensor.LoadConfig(cfgFile)
				if err != nil {
					return err
				}
			}

			baseURL := cliCfg.BaseURL
			if len(args) > 0 {
				baseURL = args[0]
			}
			if len(args) > 1 {
				count, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid sensor count %q: %w", args[1], err)
				}
				cfg.Count = count
			}
			if len(args) > 2 {
				lifetime, err := parseLifetime(args[2])
				if err != nil {
					return fmt.Errorf("invalid lifetime %q: %w", args[2], err)
				}
				cfg.Lifetime = sensor.Duration(lifetime)
			}
			if script != "" {
				cfg.Script = script
			}
			if interval > 0 {
				cfg.Interval = sensor.Duration(interval)
			}

			bridge, err := sensor.New(cmdCtx.Client, cmdCtx.Logger, cfg)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stage: %s\n", sensor.StageURL(baseURL))
			return bridge.Run(cmd.Context(), baseURL)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "sensor-config", "", "YAML sensor configuration file")
	cmd.Flags().StringVar(&script, "script", "", "Starlark script exporting sample(t, index)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between samples (default 250ms)")
	return cmd
}

// parseLifetime accepts a bare number of seconds or a duration string.
func parseLifetime(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}
