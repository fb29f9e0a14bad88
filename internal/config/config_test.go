package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	c, err := Resolve("in.rs", "out.go")
	require.NoError(t, err)
	assert.Equal(t, Config{Src: "in.rs", Dst: "out.go", Formatter: FormatterGo}, c)
}

func TestResolveOptions(t *testing.T) {
	c, err := Resolve("in.rs", "out.go",
		WithoutMain(true), Go118(true), NoFmt(true), Atomic(true), Formatter(FormatterImports))
	require.NoError(t, err)
	assert.True(t, c.WithoutMain)
	assert.True(t, c.Go118)
	assert.True(t, c.NoFmt)
	assert.True(t, c.Atomic)
	assert.Equal(t, FormatterImports, c.Formatter)

	c, err = Resolve("in.rs", "out.go", Formatter(""))
	require.NoError(t, err)
	assert.Equal(t, FormatterGo, c.Formatter)
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name     string
		src, dst string
		opts     []Option
		msg      string
	}{
		{"missing src", "", "out.go", nil, "source path is required"},
		{"missing dst", "in.rs", "", nil, "destination path is required"},
		{"bad formatter", "in.rs", "out.go", []Option{Formatter("clang")}, `unknown formatter "clang"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.src, tt.dst, tt.opts...)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestResolveDoesNotTouchFilesystem(t *testing.T) {
	_, err := Resolve("/definitely/not/here.rs", "/nor/here.go")
	assert.NoError(t, err)
}
