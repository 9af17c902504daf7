// Package launcher implements the environment bootstrap used by the
// sample entry points: it locates the repository layout relative to its
// own binary, exports the runtime environment and hands control to the
// prebuilt samples runtime, forwarding arguments verbatim.
package launcher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Environment variables exported to the delegated runtime.
const (
	EnvRuntime    = "STAGELINK_RUNTIME"
	EnvSamplePath = "STAGELINK_SAMPLE_PATH"
)

// Launcher resolves the repository layout and delegates to the runtime.
type Launcher struct {
	// ExecutablePath is the launcher binary's own path. Empty means
	// os.Executable.
	ExecutablePath string
	// GOOS overrides runtime.GOOS (used by tests).
	GOOS string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a launcher wired to the process's standard streams.
func New() *Launcher {
	return &Launcher{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (l *Launcher) goos() string {
	if l.GOOS != "" {
		return l.GOOS
	}
	return runtime.GOOS
}

// Root resolves the repository root: the parent directory of the
// launcher's own resolved location, independent of the caller's working
// directory.
func (l *Launcher) Root() (string, error) {
	exe := l.ExecutablePath
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to locate launcher executable: %w", err)
		}
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve launcher path: %w", err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to resolve launcher path: %w", err)
	}
	return filepath.Dir(abs), nil
}

// RuntimePath returns the vendored runtime binary location inside the
// build-output tree.
func (l *Launcher) RuntimePath(root string) string {
	name := "stagelink"
	if l.goos() == "windows" {
		name += ".exe"
	}
	platform := l.goos() + "-" + runtime.GOARCH
	return filepath.Join(root, "_build", platform, "release", name)
}

// SamplePath returns the sample source directory the runtime loads from.
func (l *Launcher) SamplePath(root string) string {
	return filepath.Join(root, "source", "samples")
}

// buildCommand names the platform-appropriate build step for the
// remediation message.
func (l *Launcher) buildCommand() string {
	if l.goos() == "windows" {
		return "build.bat"
	}
	return "./build.sh"
}

// Run performs the bootstrap sequence and returns the process exit code.
// A missing runtime is a guided early exit (code 0), not a fault; only
// resolution failures return an error.
func (l *Launcher) Run(args []string) (int, error) {
	root, err := l.Root()
	if err != nil {
		return 1, err
	}

	runtimeBin := l.RuntimePath(root)
	samplePath := l.SamplePath(root)

	if _, err := os.Stat(runtimeBin); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(l.Stdout, "Samples runtime not found at %s, run %s to fetch dependencies and build it.\n",
				runtimeBin, l.buildCommand())
			return 0, nil
		}
		return 1, fmt.Errorf("failed to check runtime: %w", err)
	}

	cmd := exec.Command(runtimeBin, args...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(),
		EnvRuntime+"="+runtimeBin,
		EnvSamplePath+"="+samplePath,
	)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to run samples runtime: %w", err)
	}
	return 0, nil
}
