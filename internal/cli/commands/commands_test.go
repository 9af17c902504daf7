package commands_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink-labs/stagelink/internal/cli/commands"
	"github.com/stagelink-labs/stagelink/internal/cli/testutil"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name string
		use  string
	}{
		{"version", "version"},
		{"hello-world", "hello-world"},
		{"live-session", "live-session <stage-url>"},
		{"watch", "watch <live-url> <output-file>"},
		{"sensor", "sensor [base-url] [count] [lifetime]"},
		{"validate", "validate <url>"},
		{"test-all", "test-all [base-url]"},
		{"stat", "stat <url>"},
		{"list", "list <url>"},
		{"copy", "copy <src> <dst>"},
		{"move", "move <src> <dst>"},
		{"delete", "delete <url>"},
		{"mkdir", "mkdir <url>"},
		{"checkpoints", "checkpoints <url>"},
		{"shell", "shell"},
	}

	cmds := map[string]*cobra.Command{
		"version":      commands.NewVersionCommand("0.0.0"),
		"hello-world":  commands.NewHelloWorldCommand(),
		"live-session": commands.NewLiveSessionCommand(),
		"watch":        commands.NewWatchCommand(),
		"sensor":       commands.NewSensorCommand(),
		"validate":     commands.NewValidateCommand(),
		"test-all":     commands.NewTestAllCommand(),
		"stat":         commands.NewStatCommand(),
		"list":         commands.NewListCommand(),
		"copy":         commands.NewCopyCommand(),
		"move":         commands.NewMoveCommand(),
		"delete":       commands.NewDeleteCommand(),
		"mkdir":        commands.NewMkdirCommand(),
		"checkpoints":  commands.NewCheckpointsCommand(),
		"shell":        commands.NewShellCommand(),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := cmds[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.use, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestHelloWorldFlags(t *testing.T) {
	cmd := commands.NewHelloWorldCommand()

	for flag, shorthand := range map[string]string{
		"path":     "p",
		"live":     "l",
		"existing": "e",
		"fail":     "f",
	} {
		f := cmd.Flags().Lookup(flag)
		require.NotNil(t, f, "flag --%s", flag)
		assert.Equal(t, shorthand, f.Shorthand)
	}
}

func TestMkdirStatAndList(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Projects/scratch"

	_, _, err := testutil.ExecuteCommand(t, commands.NewMkdirCommand(), cfg, base+"/sub")
	require.NoError(t, err)

	out, _, err := testutil.ExecuteCommand(t, commands.NewStatCommand(), cfg, base+"/sub")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "sub")

	out, _, err = testutil.ExecuteCommand(t, commands.NewListCommand(), cfg, base)
	require.NoError(t, err)
	testutil.AssertContains(t, out, "sub")
	testutil.AssertContains(t, out, "(1 entries)")
}

func TestListEmptyFolder(t *testing.T) {
	cfg := testutil.SetupHub(t)

	_, _, err := testutil.ExecuteCommand(t, commands.NewMkdirCommand(), cfg, "stage://localhost/empty")
	require.NoError(t, err)

	out, _, err := testutil.ExecuteCommand(t, commands.NewListCommand(), cfg, "stage://localhost/empty")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "(empty)")
}

func TestStatMissingFileFails(t *testing.T) {
	cfg := testutil.SetupHub(t)

	_, _, err := testutil.ExecuteCommand(t, commands.NewStatCommand(), cfg, "stage://localhost/nope")
	require.Error(t, err)
}

func TestCopyMoveDeleteRoundTrip(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Users/tester"

	_, _, err := testutil.ExecuteCommand(t, commands.NewHelloWorldCommand(), cfg, "--path", base)
	require.NoError(t, err)

	src := base + "/helloworld.stage"
	_, _, err = testutil.ExecuteCommand(t, commands.NewCopyCommand(), cfg, src, base+"/copied.stage")
	require.NoError(t, err)

	_, _, err = testutil.ExecuteCommand(t, commands.NewMoveCommand(), cfg, base+"/copied.stage", base+"/moved.stage")
	require.NoError(t, err)

	out, _, err := testutil.ExecuteCommand(t, commands.NewListCommand(), cfg, base)
	require.NoError(t, err)
	testutil.AssertContains(t, out, "moved.stage")
	testutil.AssertNotContains(t, out, "copied.stage")

	_, _, err = testutil.ExecuteCommand(t, commands.NewDeleteCommand(), cfg, base+"/moved.stage")
	require.NoError(t, err)

	_, _, err = testutil.ExecuteCommand(t, commands.NewStatCommand(), cfg, base+"/moved.stage")
	require.Error(t, err)
}

func TestHelloWorldCreatesStage(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Projects/hello"

	out, _, err := testutil.ExecuteCommand(t, commands.NewHelloWorldCommand(), cfg, "--path", base)
	require.NoError(t, err)
	testutil.AssertContains(t, out, base+"/helloworld.stage")

	out, _, err = testutil.ExecuteCommand(t, commands.NewCheckpointsCommand(), cfg, base+"/helloworld.stage")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "Created a box.")
	testutil.AssertContains(t, out, "Created a DomeLight.")
}

func TestValidatePassesOnCleanStage(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Projects/valid"

	_, _, err := testutil.ExecuteCommand(t, commands.NewHelloWorldCommand(), cfg, "--path", base)
	require.NoError(t, err)

	out, _, err := testutil.ExecuteCommand(t, commands.NewValidateCommand(), cfg, base+"/helloworld.stage")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "PASS")
	testutil.AssertContains(t, out, "(0 issues)")
}

func TestValidateFailsOnBadStage(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Projects/invalid"

	_, _, err := testutil.ExecuteCommand(t, commands.NewHelloWorldCommand(), cfg, "--path", base, "--fail")
	require.NoError(t, err)

	out, _, err := testutil.ExecuteCommand(t, commands.NewValidateCommand(), cfg, base+"/helloworld.stage")
	require.Error(t, err)
	testutil.AssertContains(t, out, "FAIL")
}

func TestValidateJSONOutput(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Projects/jsonout"

	_, _, err := testutil.ExecuteCommand(t, commands.NewHelloWorldCommand(), cfg, "--path", base)
	require.NoError(t, err)

	out, _, err := testutil.ExecuteCommand(t, commands.NewValidateCommand(), cfg, base+"/helloworld.stage", "--json")
	require.NoError(t, err)
	testutil.AssertContains(t, out, `"rules"`)
	testutil.AssertNoANSI(t, out)
}

func TestSensorShortRun(t *testing.T) {
	cfg := testutil.SetupHub(t)
	base := "stage://localhost/Projects/sensors"

	out, _, err := testutil.ExecuteCommand(t, commands.NewSensorCommand(), cfg,
		base, "2", "300ms", "--interval", "50ms")
	require.NoError(t, err)
	testutil.AssertContains(t, out, base+"/SensorExample.live")

	_, _, err = testutil.ExecuteCommand(t, commands.NewStatCommand(), cfg, base+"/SensorExample.live")
	require.NoError(t, err)
}

func TestSensorRejectsBadCount(t *testing.T) {
	cfg := testutil.SetupHub(t)

	_, _, err := testutil.ExecuteCommand(t, commands.NewSensorCommand(), cfg,
		"stage://localhost/Projects/sensors", "two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sensor count")
}

func TestTestAllPasses(t *testing.T) {
	if testing.Short() {
		t.Skip("runs a full sample suite")
	}
	cfg := testutil.SetupHub(t)

	out, _, err := testutil.ExecuteCommand(t, commands.NewTestAllCommand(), cfg,
		"stage://localhost/Projects/suite")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "(6/6 steps passed)")
}
