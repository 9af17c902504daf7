package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "stagelink", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	for _, name := range []string{
		"version", "hello-world", "live-session", "watch", "sensor",
		"validate", "test-all", "stat", "list", "copy", "move",
		"delete", "mkdir", "checkpoints", "shell", "completion",
	} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %s", name)
	}
}

func TestRootCmdPersistentFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config", "root", "username", "base-url", "resources-dir", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag --%s", name)
	}
}

func TestRootCmdVersion(t *testing.T) {
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "stagelink "+Version)
}

func TestVersionCommandOutput(t *testing.T) {
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Stagelink v"+Version)
}
