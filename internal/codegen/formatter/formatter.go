// Package formatter reformats a generated Go file in place.
package formatter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/execabs"
	"golang.org/x/tools/imports"

	"github.com/Alia5/rsbridge/internal/codegen/fault"
)

// Formatter rewrites the file at path. A failure is a formatter fault.
type Formatter interface {
	Format(path string) error
}

// Names accepted by New.
const (
	NameGo      = "go"
	NameImports = "imports"
)

// New returns the formatter registered under name.
func New(name string) (Formatter, error) {
	switch name {
	case NameGo, "":
		return Command{}, nil
	case NameImports:
		return Imports{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter %q (supported: %s, %s)", name, NameGo, NameImports)
	}
}

// Command runs an external formatter and waits for it. The zero value runs
// "go fmt <path>".
type Command struct {
	Name string
	Args []string
}

// Format implements Formatter.
func (c Command) Format(path string) error {
	name, args := c.Name, c.Args
	if name == "" {
		name, args = "go", []string{"fmt"}
	}

	cmd := execabs.Command(name, append(append([]string(nil), args...), path)...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	code := -1
	var exitErr *execabs.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return fault.Formatter(path, code, string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err))
}

// Imports formats in process with golang.org/x/tools/imports, leaving the
// import set as generated.
type Imports struct{}

// Format implements Formatter.
func (Imports) Format(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fault.Formatter(path, 0, "", err)
	}
	out, err := imports.Process(path, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return fault.Formatter(path, 0, err.Error(), err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fault.Formatter(path, 0, "", err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fault.Formatter(path, 0, "", err)
	}
	return nil
}
