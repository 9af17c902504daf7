// Package validator checks a parsed stage against a set of schema rules.
// Rules inspect prims one at a time and record issues; the CLI renders the
// collected report as a per-rule pass/fail table.
package validator

import (
	"context"
	"log/slog"

	"github.com/stagelink-labs/stagelink/internal/stage"
)

// Severity of a reported issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding produced by a rule against one prim.
type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Prim     string   `json:"prim"`
	Message  string   `json:"message"`
}

// Report is the outcome of one validation run.
type Report struct {
	URL    string   `json:"url"`
	Rules  []string `json:"rules"`
	Issues []Issue  `json:"issues"`
}

// Failed reports whether any error-severity issue was recorded.
func (r *Report) Failed() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// IssuesFor returns the issues recorded by the named rule.
func (r *Report) IssuesFor(rule string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Rule == rule {
			out = append(out, issue)
		}
	}
	return out
}

func (r *Report) add(issue Issue) {
	if issue.Severity == "" {
		issue.Severity = SeverityError
	}
	r.Issues = append(r.Issues, issue)
}

// Target is one prim under inspection together with the run context a rule
// may need, such as the location of the stage being validated.
type Target struct {
	// StageURL is the location the stage was read from. Relative asset
	// references resolve against its parent folder.
	StageURL string
}

// Validator runs an ordered list of rules over a stage.
type Validator struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for per-rule progress.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// WithRules replaces the default rule set.
func WithRules(rules ...Rule) Option {
	return func(v *Validator) { v.rules = rules }
}

// New creates a validator with the default rule set. Pass WithRules to
// run a custom set, e.g. to add a MissingReferenceChecker bound to an
// asset client.
func New(opts ...Option) *Validator {
	v := &Validator{
		rules: []Rule{
			NewExtentsChecker(),
			NewGeomSubsetChecker(),
			NewMaterialBindingChecker(),
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.New(slog.DiscardHandler)
	}
	return v
}

// AddRule appends a rule to the run order.
func (v *Validator) AddRule(rule Rule) {
	v.rules = append(v.rules, rule)
}

// Rules returns the rules in run order.
func (v *Validator) Rules() []Rule { return v.rules }

// Validate runs every rule over every prim of the stage and returns the
// collected report. Rules run in registration order, prims in depth-first
// definition order.
func (v *Validator) Validate(ctx context.Context, st *stage.Stage, target Target) (*Report, error) {
	report := &Report{URL: target.StageURL}
	for _, rule := range v.rules {
		report.Rules = append(report.Rules, rule.Name())
	}
	for _, rule := range v.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(report.Issues)
		var walkErr error
		st.Traverse(func(p *stage.Prim) bool {
			if err := rule.CheckPrim(ctx, p, target, report); err != nil {
				walkErr = err
				return false
			}
			return true
		})
		if walkErr != nil {
			return nil, walkErr
		}
		v.logger.Debug("rule finished",
			"rule", rule.Name(), "issues", len(report.Issues)-before)
	}
	return report, nil
}
