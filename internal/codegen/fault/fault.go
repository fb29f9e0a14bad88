// Package fault provides the structured error type returned by the generator pipeline.
//
// Faults are categorized by Stage (where the run stopped) and Kind (error category).
// A fault always terminates the run; nothing in the pipeline retries or recovers.
//
//	err := fault.Wrap(fault.StageParse, fault.KindParse, cause, "parse source")
//	if errors.Is(err, fault.ErrParse) { ... }
package fault

import (
	"fmt"
	"strings"
)

// Stage indicates which pipeline stage produced the fault
type Stage string

const (
	StageLoad      Stage = "load"      // read source
	StageParse     Stage = "parse"     // source model
	StageReference Stage = "reference" // reference conversion
	StageHeader    Stage = "header"    // header synthesis
	StageTraits    Stage = "traits"    // trait extraction
	StageAssemble  Stage = "assemble"  // document assembly
	StageCommit    Stage = "commit"    // write + format
)

// Kind categorizes the fault
type Kind string

const (
	KindIO               Kind = "io"
	KindParse            Kind = "parse"
	KindConversion       Kind = "conversion"
	KindHeaderGeneration Kind = "header_generation"
	KindEncoding         Kind = "encoding"
	KindFormatter        Kind = "formatter"
)

// Sentinels for errors.Is. They match any fault of the same kind.
var (
	ErrIO               = &Error{Kind: KindIO}
	ErrParse            = &Error{Kind: KindParse}
	ErrConversion       = &Error{Kind: KindConversion}
	ErrHeaderGeneration = &Error{Kind: KindHeaderGeneration}
	ErrEncoding         = &Error{Kind: KindEncoding}
	ErrFormatter        = &Error{Kind: KindFormatter}
)

// Error is the fault type used throughout the generator
type Error struct {
	Cause    error
	Stage    Stage
	Kind     Kind
	Path     string
	Detail   string
	ExitCode int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Stage != "" {
		b.WriteString(string(e.Stage))
		b.WriteString(" stage: ")
	}
	b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	b.WriteString(" fault")

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitCode)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this fault.
// A target without a stage matches faults of its kind in any stage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Stage == "" || t.Stage == e.Stage
}

// Wrap wraps an existing error with stage, kind and detail
func Wrap(stage Stage, kind Kind, cause error, detail string) *Error {
	return &Error{
		Stage:  stage,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IO creates an I/O fault for a filesystem operation on path
func IO(stage Stage, path string, cause error, detail string) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindIO,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidUTF8 creates an encoding fault for bytes that do not decode as UTF-8
func InvalidUTF8(stage Stage, data []byte, offset int) *Error {
	preview := data[offset:]
	if len(preview) > 16 {
		preview = preview[:16]
	}
	return &Error{
		Stage:  stage,
		Kind:   KindEncoding,
		Detail: fmt.Sprintf("invalid UTF-8 sequence at byte %d: %x", offset, preview),
	}
}

// Formatter creates a formatter fault for a failed formatter run on path.
// output is the captured formatter output, if any.
func Formatter(path string, exitCode int, output string, cause error) *Error {
	return &Error{
		Stage:    StageCommit,
		Kind:     KindFormatter,
		Path:     path,
		Detail:   strings.TrimSpace(output),
		ExitCode: exitCode,
		Cause:    cause,
	}
}
