// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/stagelink-labs/stagelink/internal/cli/config"
)

// SetupHub creates a temporary hub root with a Users folder and returns
// a config pointing at it.
func SetupHub(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Users", "tester"), 0o755); err != nil {
		t.Fatalf("failed to create user folder: %v", err)
	}

	return &config.Config{
		Root:         root,
		Username:     "tester",
		BaseURL:      "stage://localhost/Projects/samplesTest",
		ResourcesDir: SetupResources(t),
		HistoryFile:  filepath.Join(root, "history"),
		Output:       "text",
	}
}

// SetupResources creates a local resources tree with the folders the
// samples upload.
func SetupResources(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, f := range []string{
		"Materials/Fieldstone/Fieldstone.mdl",
		"Props/Coaster/Coaster_Hexagon.stage",
	} {
		path := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create resource dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write resource: %v", err)
		}
	}
	return dir
}

// ExecuteCommand runs a command with the given config wired into its
// context and returns captured stdout and stderr.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	ctx := context.WithValue(context.Background(), config.ConfigKey(), cfg)
	ctx = context.WithValue(ctx, config.LoggerKey(), slog.New(slog.DiscardHandler))
	err := cmd.ExecuteContext(ctx)

	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertNotContains checks that the string does not contain the substring.
func AssertNotContains(t *testing.T, s, unexpected string) {
	t.Helper()
	if strings.Contains(s, unexpected) {
		t.Errorf("string %q unexpectedly contains %q", s, unexpected)
	}
}
