package configpaths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNamedConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG layout only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	tests := []struct {
		base, format, want string
	}{
		{"config", "json", "/xdg/rsbridge/config.json"},
		{"generate", "yml", "/xdg/rsbridge/generate.yaml"},
		{"inspect", "toml", "/xdg/rsbridge/inspect.toml"},
		{"config", "ini", "/xdg/rsbridge/config.json"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"."+tt.format, func(t *testing.T) {
			got, err := DefaultNamedConfigPath(tt.base, tt.format)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestDefaultConfigDirHomeFallback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG layout only")
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/dev")

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/.config/rsbridge", dir)
}

func TestConfigCandidatePathsUserPathFirst(t *testing.T) {
	tests := []struct {
		path  string
		which int
	}{
		{"custom.json", 0},
		{"custom.cfg", 0},
		{"custom.yml", 1},
		{"custom.yaml", 1},
		{"custom.toml", 2},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			j, y, to := ConfigCandidatePaths(tt.path)
			lists := [][]string{j, y, to}
			for i, l := range lists {
				require.NotEmpty(t, l)
				if i == tt.which {
					assert.Equal(t, tt.path, l[0])
				} else {
					assert.NotContains(t, l, tt.path)
				}
			}
		})
	}
}

func TestConfigCandidatePathsWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	j, y, to := ConfigCandidatePaths("")
	assert.Equal(t, filepath.Join(dir, "rsbridge.json"), j[0])
	assert.Equal(t, filepath.Join(dir, "rsbridge.yaml"), y[0])
	assert.Equal(t, filepath.Join(dir, "rsbridge.yml"), y[1])
	assert.Equal(t, filepath.Join(dir, "rsbridge.toml"), to[0])
	assert.Contains(t, j, filepath.Join(dir, "generate.json"))
	assert.Contains(t, to, filepath.Join(dir, "inspect.toml"))
}

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
