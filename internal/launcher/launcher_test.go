package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scaffoldRepo lays out a repository with the launcher binary at the root
// and returns the root and the launcher's own path.
func scaffoldRepo(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	// EvalSymlinks so macOS /var -> /private/var indirection does not
	// break path equality checks.
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	exe := filepath.Join(resolved, "launch")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	return resolved, exe
}

// installFakeRuntime writes a shell script at the runtime location that
// records its argv and environment, then exits with the given code.
func installFakeRuntime(t *testing.T, l *Launcher, root string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime script requires a POSIX shell")
	}

	runtimeBin := l.RuntimePath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(runtimeBin), 0o755))

	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > \"$(dirname \"$0\")/args.txt\"\n" +
		"printf '%s\\n%s\\n' \"$STAGELINK_RUNTIME\" \"$STAGELINK_SAMPLE_PATH\" > \"$(dirname \"$0\")/env.txt\"\n" +
		"pwd > \"$(dirname \"$0\")/cwd.txt\"\n" +
		"exit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(runtimeBin, []byte(script), 0o755))
	return runtimeBin
}

func newTestLauncher(exe string) (*Launcher, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Launcher{
		ExecutablePath: exe,
		Stdin:          strings.NewReader(""),
		Stdout:         out,
		Stderr:         out,
	}, out
}

func TestRootIsParentOfLauncher(t *testing.T) {
	root, exe := scaffoldRepo(t)
	l, _ := newTestLauncher(exe)

	// Root resolution must not depend on the caller's working directory.
	t.Chdir(t.TempDir())

	got, err := l.Root()
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestDerivedPaths(t *testing.T) {
	root, exe := scaffoldRepo(t)
	l, _ := newTestLauncher(exe)

	runtimeBin := l.RuntimePath(root)
	assert.True(t, strings.HasPrefix(runtimeBin, filepath.Join(root, "_build")),
		"runtime path should live in the build tree: %s", runtimeBin)
	assert.Contains(t, runtimeBin, runtime.GOARCH)
	assert.Equal(t, filepath.Join(root, "source", "samples"), l.SamplePath(root))
}

func TestWindowsRuntimeName(t *testing.T) {
	root, exe := scaffoldRepo(t)
	l, _ := newTestLauncher(exe)
	l.GOOS = "windows"

	assert.True(t, strings.HasSuffix(l.RuntimePath(root), ".exe"))
}

func TestMissingRuntimeIsGuidedExit(t *testing.T) {
	_, exe := scaffoldRepo(t)
	l, out := newTestLauncher(exe)

	code, err := l.Run([]string{"--help"})
	require.NoError(t, err)
	assert.Equal(t, 0, code, "missing runtime is not a failure")
	assert.Contains(t, out.String(), "./build.sh")
}

func TestMissingRuntimeMessageNamesWindowsBuild(t *testing.T) {
	_, exe := scaffoldRepo(t)
	l, out := newTestLauncher(exe)
	l.GOOS = "windows"

	code, err := l.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "build.bat")
}

func TestDelegatesWithArgsAndExitCode(t *testing.T) {
	root, exe := scaffoldRepo(t)
	l, _ := newTestLauncher(exe)
	runtimeBin := installFakeRuntime(t, l, root, 7)

	t.Chdir(t.TempDir())

	code, err := l.Run([]string{"--help"})
	require.NoError(t, err)
	assert.Equal(t, 7, code, "child exit code must propagate")

	argsFile := filepath.Join(filepath.Dir(runtimeBin), "args.txt")
	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--help\n", string(args), "arguments must be forwarded verbatim")

	env, err := os.ReadFile(filepath.Join(filepath.Dir(runtimeBin), "env.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(env)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, runtimeBin, lines[0])
	assert.Equal(t, l.SamplePath(root), lines[1])

	cwd, err := os.ReadFile(filepath.Join(filepath.Dir(runtimeBin), "cwd.txt"))
	require.NoError(t, err)
	assert.Equal(t, root, strings.TrimSpace(string(cwd)), "delegate runs from the repository root")
}

func TestDelegateSuccess(t *testing.T) {
	root, exe := scaffoldRepo(t)
	l, _ := newTestLauncher(exe)
	installFakeRuntime(t, l, root, 0)

	code, err := l.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
