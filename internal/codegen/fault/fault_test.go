package fault

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"io matches io sentinel", IO(StageLoad, "a.rs", fs.ErrNotExist, "read source"), ErrIO, true},
		{"io does not match parse", IO(StageLoad, "a.rs", fs.ErrNotExist, "read source"), ErrParse, false},
		{"stage-qualified target", Wrap(StageHeader, KindHeaderGeneration, nil, "x"), &Error{Stage: StageHeader, Kind: KindHeaderGeneration}, true},
		{"wrong stage", Wrap(StageHeader, KindHeaderGeneration, nil, "x"), &Error{Stage: StageCommit, Kind: KindHeaderGeneration}, false},
		{"formatter", Formatter("out.go", 2, "boom", nil), ErrFormatter, true},
		{"encoding", InvalidUTF8(StageTraits, []byte{0xff}, 0), ErrEncoding, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := IO(StageCommit, "out.go", fs.ErrPermission, "write document")
	assert.ErrorIs(t, err, fs.ErrPermission)

	var f *Error
	require.ErrorAs(t, error(err), &f)
	assert.Equal(t, StageCommit, f.Stage)
}

func TestErrorMessage(t *testing.T) {
	err := Formatter("out.go", 1, "  out.go:3:1: expected declaration\n", errors.New("exit status 1"))
	assert.Equal(t,
		"commit stage: formatter fault at out.go: out.go:3:1: expected declaration (exit status 1) (caused by: exit status 1)",
		err.Error())

	assert.Equal(t, "header generation fault", (&Error{Kind: KindHeaderGeneration}).Error())
}

func TestInvalidUTF8Preview(t *testing.T) {
	data := append([]byte("ok"), make([]byte, 40)...)
	data[2] = 0xc3
	err := InvalidUTF8(StageTraits, data, 2)
	assert.Contains(t, err.Detail, "at byte 2")
	assert.Contains(t, err.Detail, "c3000000000000000000000000000000")
}
