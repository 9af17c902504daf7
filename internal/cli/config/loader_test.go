package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultResourcesDir, cfg.ResourcesDir)
	assert.NotEmpty(t, cfg.Root)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "root: /srv/hub\nbase_url: stage://localhost/Projects/ci\nverbose: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stagelink.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/hub", cfg.Root)
	assert.Equal(t, "stage://localhost/Projects/ci", cfg.BaseURL)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "stagelink.yaml", GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stagelink.yaml"),
		[]byte("base_url: stage://localhost/Projects/file\n"), 0o644))
	t.Setenv("STAGELINK_BASE_URL", "stage://localhost/Projects/env")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "stage://localhost/Projects/env", cfg.BaseURL)
}

func TestLoadConfigFlagsWinOverEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STAGELINK_BASE_URL", "stage://localhost/Projects/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.String("root", "", "")
	require.NoError(t, flags.Parse([]string{"--base-url", "stage://localhost/Projects/flag"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "stage://localhost/Projects/flag", cfg.BaseURL)

	// Unchanged flags do not clobber lower layers.
	assert.NotEmpty(t, cfg.Root)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := LoadConfig("nope.yaml", nil)
	assert.Error(t, err)
}
