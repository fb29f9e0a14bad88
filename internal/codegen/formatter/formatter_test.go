package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/execabs"

	"github.com/Alia5/rsbridge/internal/codegen/fault"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := execabs.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestNew(t *testing.T) {
	f, err := New("go")
	require.NoError(t, err)
	assert.IsType(t, Command{}, f)

	f, err = New("imports")
	require.NoError(t, err)
	assert.IsType(t, Imports{}, f)

	_, err = New("clang-format")
	assert.ErrorContains(t, err, `unknown formatter "clang-format"`)
}

func TestCommandSuccess(t *testing.T) {
	requireBinary(t, "true")
	path := writeFile(t, "package main\n")
	assert.NoError(t, Command{Name: "true"}.Format(path))
}

func TestCommandFailure(t *testing.T) {
	requireBinary(t, "sh")
	path := writeFile(t, "package main\n")

	err := Command{Name: "sh", Args: []string{"-c", "echo bad input >&2; exit 3"}}.Format(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrFormatter))

	var f *fault.Error
	require.True(t, errors.As(err, &f))
	assert.Equal(t, 3, f.ExitCode)
	assert.Equal(t, "bad input", f.Detail)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, fault.StageCommit, f.Stage)
}

func TestCommandMissingBinary(t *testing.T) {
	path := writeFile(t, "package main\n")
	err := Command{Name: "rsbridge-no-such-formatter"}.Format(path)
	require.Error(t, err)

	var f *fault.Error
	require.True(t, errors.As(err, &f))
	assert.Equal(t, -1, f.ExitCode)
	assert.ErrorIs(t, err, execabs.ErrNotFound)
}

func TestImportsFormatsInPlace(t *testing.T) {
	path := writeFile(t, "package main\nfunc  main( ) {\nx:=1\n_ = x}\n")

	require.NoError(t, Imports{}.Format(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {\n\tx := 1\n\t_ = x\n}\n", string(got))
}

func TestImportsKeepsImportSet(t *testing.T) {
	src := "package main\n\nimport (\n\t\"unsafe\"\n\t\"runtime\"\n)\n\nfunc main() {}\n"
	path := writeFile(t, src)

	require.NoError(t, Imports{}.Format(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"unsafe"`)
	assert.Contains(t, string(got), `"runtime"`)
}

func TestImportsSyntaxError(t *testing.T) {
	path := writeFile(t, "package main\nfunc {\n")
	err := Imports{}.Format(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrFormatter)

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "package main\nfunc {\n", string(got))
}
