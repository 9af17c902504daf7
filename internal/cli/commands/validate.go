package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stagelink-labs/stagelink/internal/stage"
	"github.com/stagelink-labs/stagelink/internal/validator"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <url>",
		Short: "Run the asset validation rules against a stage",
		Long: `Reads a stage from the hub and checks it against the validation
rules: geometric prims must author extents, geom subsets with material
bindings must use the materialBind family, material bindings require the
binding API, and referenced assets must exist. Exits non-zero when any
rule reports an error.`,
		Example: `  # Validate a stage
  stagelink validate stage://localhost/Users/alice/helloworld.stage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cmdCtx.Close()

			data, err := cmdCtx.Client.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read stage %s: %w", args[0], err)
			}
			st, err := stage.Parse(data)
			if err != nil {
				return fmt.Errorf("parse stage %s: %w", args[0], err)
			}

			v := validator.New(validator.WithLogger(cmdCtx.Logger))
			v.AddRule(validator.NewMissingReferenceChecker(cmdCtx.Client))

			report, err := v.Validate(cmd.Context(), st, validator.Target{StageURL: args[0]})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				renderReport(cmd, report)
			}

			if report.Failed() {
				return fmt.Errorf("validation failed for %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderReport(cmd *cobra.Command, report *validator.Report) {
	titler := cases.Title(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Result", "Issues"})
	for _, rule := range report.Rules {
		issues := report.IssuesFor(rule)
		result := "PASS"
		if len(issues) > 0 {
			result = "FAIL"
		}
		t.AppendRow(table.Row{titler.String(strings.ReplaceAll(rule, "-", " ")), result, len(issues)})
	}
	t.Render()

	for _, issue := range report.Issues {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s (%s)\n",
			strings.ToUpper(string(issue.Severity)), issue.Rule, issue.Message, issue.Prim)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d issues)\n", len(report.Issues))
}
