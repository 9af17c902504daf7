package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/cli/config"
	"github.com/stagelink-labs/stagelink/internal/samples/helloworld"
	"github.com/stagelink-labs/stagelink/internal/sensor"
	"github.com/stagelink-labs/stagelink/internal/stage"
	"github.com/stagelink-labs/stagelink/internal/validator"
)

type testStep struct {
	name string
	run  func(ctx context.Context, cmdCtx *CommandContext, baseURL string) error
}

// NewTestAllCommand creates the test-all command.
func NewTestAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-all [base-url]",
		Short: "Exercise every sample and utility against a hub",
		Long: `Runs the samples and utilities end to end against one base URL:
builds the hello world stage, validates it, confirms that a stage seeded
with a bad cube fails validation, runs a short sensor pass, and round
trips a file through copy, move, list, and delete. Prints a summary and
exits non-zero if any step fails.`,
		Example: `  # Run the whole suite against the default base URL
  stagelink test-all

  # Run against a scratch area
  stagelink test-all stage://localhost/Projects/scratch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			baseURL := config.GetConfig(cmd.Context()).BaseURL
			if len(args) > 0 {
				baseURL = args[0]
			}

			steps := []testStep{
				{"hello-world", stepHelloWorld},
				{"stat", stepStat},
				{"validate", stepValidate},
				{"validate-failure", stepValidateFailure},
				{"sensor", stepSensor},
				{"file-ops", stepFileOps},
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Step", "Result", "Detail"})

			failed := 0
			for _, step := range steps {
				detail := ""
				result := "PASS"
				if err := step.run(cmd.Context(), cmdCtx, baseURL); err != nil {
					result = "FAIL"
					detail = err.Error()
					failed++
					cmdCtx.Logger.Error("test step failed", "step", step.name, "error", err)
				}
				t.AppendRow(table.Row{step.name, result, detail})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d/%d steps passed)\n", len(steps)-failed, len(steps))

			if failed > 0 {
				return fmt.Errorf("%d of %d steps failed", failed, len(steps))
			}
			return nil
		},
	}
}

func testStageURL(baseURL string) string {
	return asset.JoinURL(baseURL, helloworld.StageBaseName+".stage")
}

func stepHelloWorld(ctx context.Context, cmdCtx *CommandContext, baseURL string) error {
	sample, err := helloworld.New(cmdCtx.Client, cmdCtx.Logger, helloworld.Options{
		Path:         baseURL,
		ResourcesDir: config.GetConfig(ctx).ResourcesDir,
	})
	if err != nil {
		return err
	}
	_, err = sample.Run(ctx)
	return err
}

func stepStat(ctx context.Context, cmdCtx *CommandContext, baseURL string) error {
	entry, err := cmdCtx.Client.Stat(ctx, testStageURL(baseURL))
	if err != nil {
		return err
	}
	if entry.IsDir || entry.Size == 0 {
		return fmt.Errorf("unexpected stat result for %s", testStageURL(baseURL))
	}
	return nil
}

func runValidation(ctx context.Context, cmdCtx *CommandContext, stageURL string) (*validator.Report, error) {
	data, err := cmdCtx.Client.ReadFile(ctx, stageURL)
	if err != nil {
		return nil, err
	}
	st, err := stage.Parse(data)
	if err != nil {
		return nil, err
	}
	v := validator.New(validator.WithLogger(cmdCtx.Logger))
	v.AddRule(validator.NewMissingReferenceChecker(cmdCtx.Client))
	return v.Validate(ctx, st, validator.Target{StageURL: stageURL})
}

func stepValidate(ctx context.Context, cmdCtx *CommandContext, baseURL string) error {
	report, err := runValidation(ctx, cmdCtx, testStageURL(baseURL))
	if err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("expected a clean stage, got %d issues", len(report.Issues))
	}
	return nil
}

// stepValidateFailure seeds a cube without extents and expects the extents
// rule to flag it.
func stepValidateFailure(ctx context.Context, cmdCtx *CommandContext, baseURL string) error {
	failFolder := asset.JoinURL(baseURL, "failTest")
	sample, err := helloworld.New(cmdCtx.Client, cmdCtx.Logger, helloworld.Options{
		Path:         failFolder,
		Fail:         true,
		ResourcesDir: config.GetConfig(ctx).ResourcesDir,
	})
	if err != nil {
		return err
	}
	result, err := sample.Run(ctx)
	if err != nil {
		return err
	}

	report, err := runValidation(ctx, cmdCtx, result.StageURL)
	if err != nil {
		return err
	}
	if len(report.IssuesFor("extents")) == 0 {
		return fmt.Errorf("expected the extents rule to fail for %s", result.StageURL)
	}
	return cmdCtx.Client.Delete(ctx, failFolder)
}

func stepSensor(ctx context.Context, cmdCtx *CommandContext, baseURL string) error {
	bridge, err := sensor.New(cmdCtx.Client, cmdCtx.Logger, sensor.Config{
		Count:    2,
		Interval: sensor.Duration(50 * time.Millisecond),
		Lifetime: sensor.Duration(500 * time.Millisecond),
	})
	if err != nil {
		return err
	}
	if err := bridge.Run(ctx, baseURL); err != nil {
		return err
	}

	data, err := cmdCtx.Client.ReadFile(ctx, sensor.StageURL(baseURL))
	if err != nil {
		return err
	}
	st, err := stage.Parse(data)
	if err != nil {
		return err
	}
	if st.FindFirst(func(p *stage.Prim) bool { return p.Path() == sensor.SensorPath(0) }) == nil {
		return fmt.Errorf("sensor stage is missing %s", sensor.SensorPath(0))
	}
	return nil
}

// stepFileOps round trips the hello world stage through copy, move, list,
// and delete.
func stepFileOps(ctx context.Context, cmdCtx *CommandContext, baseURL string) error {
	src := testStageURL(baseURL)
	copied := asset.JoinURL(baseURL, "copied.stage")
	moved := asset.JoinURL(baseURL, "moved.stage")

	if err := cmdCtx.Client.Copy(ctx, src, copied); err != nil {
		return err
	}
	if err := cmdCtx.Client.Move(ctx, copied, moved); err != nil {
		return err
	}

	entries, err := cmdCtx.Client.List(ctx, baseURL)
	if err != nil {
		return err
	}
	found := false
	for _, entry := range entries {
		if entry.Name == "moved.stage" {
			found = true
		}
		if entry.Name == "copied.stage" {
			return fmt.Errorf("copied.stage still present after move")
		}
	}
	if !found {
		return fmt.Errorf("moved.stage not found in %s", baseURL)
	}

	if err := cmdCtx.Client.Delete(ctx, moved); err != nil {
		return err
	}
	_, err = cmdCtx.Client.Stat(ctx, moved)
	if err == nil {
		return fmt.Errorf("%s still exists after delete", moved)
	}
	return nil
}
