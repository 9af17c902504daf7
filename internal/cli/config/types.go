// Package config provides configuration management for the stagelink CLI.
// Settings come from (lowest to highest precedence) built-in defaults, a
// stagelink.yaml file, STAGELINK_ environment variables and command flags.
package config

import (
	"os"
	"path/filepath"
)

// Config holds all CLI configuration options.
type Config struct {
	// Root is the directory the localfs hub backend stores data under.
	Root string `koanf:"root"`

	// Username overrides the connected username reported by the hub.
	// Empty means the OS user.
	Username string `koanf:"username"`

	// BaseURL is the default destination for the test driver.
	BaseURL string `koanf:"base_url"`

	// ResourcesDir holds the sample Materials/ and Props/ folders.
	ResourcesDir string `koanf:"resources_dir"`

	// HistoryFile stores shell command history.
	HistoryFile string `koanf:"history_file"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultBaseURL      = "stage://localhost/Projects/samplesTest"
	DefaultResourcesDir = "resources"
	DefaultOutput       = "text"
)

// DefaultRoot returns the default hub root under the user's home
// directory, falling back to a relative path when home is unknown.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stagelink/hub"
	}
	return filepath.Join(home, ".stagelink", "hub")
}

// DefaultHistoryFile returns the default shell history location.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stagelink/shell_history"
	}
	return filepath.Join(home, ".stagelink", "shell_history")
}
