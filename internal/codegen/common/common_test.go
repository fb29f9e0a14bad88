package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Src", "src"},
		{"WithoutMain", "without_main"},
		{"NoFmt", "no_fmt"},
		{"XMLParser", "xml_parser"},
		{"ArtifactFile", "artifact_file"},
		{"Go118", "go118"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSnakeCase(tt.in))
		})
	}
}

func TestIsGoKeyword(t *testing.T) {
	assert.True(t, IsGoKeyword("type"))
	assert.True(t, IsGoKeyword("range"))
	assert.False(t, IsGoKeyword("self"))
	assert.False(t, IsGoKeyword("Type"))
}

func TestCIdent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"default", "default_"},
		{"long", "long_"},
		{"bool", "bool_"},
		{"unsigned", "unsigned_"},
		{"range", "range"},
		{"name", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CIdent(tt.in))
		})
	}
	assert.True(t, IsCKeyword("volatile"))
	assert.False(t, IsCKeyword("type"))
}

func TestGetVersion(t *testing.T) {
	v, err := GetVersion()
	assert.NoError(t, err)
	assert.Equal(t, "0.0.1-dev", v)
}

func TestGetVersionFromLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.4.0-dirty"
	v, err := GetVersion()
	assert.NoError(t, err)
	assert.Equal(t, "1.4.0-dirty", v)

	Version = "nightly"
	_, err = GetVersion()
	assert.Error(t, err)
}
