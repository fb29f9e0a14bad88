// Package config holds the resolved run parameters of a generation run and
// the logging flags shared by all commands.
package config

import (
	"errors"
	"fmt"
)

// Formatter names.
const (
	FormatterGo      = "go"
	FormatterImports = "imports"
)

// Config is the resolved, immutable configuration of one generation run.
type Config struct {
	Src         string
	Dst         string
	WithoutMain bool
	Go118       bool
	NoFmt       bool
	// Atomic commits through temporary siblings of Dst and a final rename, so
	// Dst never holds the reference document.
	Atomic    bool
	Formatter string
}

// Option adjusts a Config during Resolve.
type Option func(*Config)

// WithoutMain omits the `func main() {}` stub.
func WithoutMain(v bool) Option { return func(c *Config) { c.WithoutMain = v } }

// Go118 emits Go 1.18 compatible helpers and the reflect import.
func Go118(v bool) Option { return func(c *Config) { c.Go118 = v } }

// NoFmt skips the formatter.
func NoFmt(v bool) Option { return func(c *Config) { c.NoFmt = v } }

// Atomic enables the temp-file and rename commit.
func Atomic(v bool) Option { return func(c *Config) { c.Atomic = v } }

// Formatter selects the formatter by name.
func Formatter(name string) Option { return func(c *Config) { c.Formatter = name } }

// Resolve builds a Config. src and dst are mandatory; nothing touches the
// filesystem here.
func Resolve(src, dst string, opts ...Option) (Config, error) {
	c := Config{Src: src, Dst: dst, Formatter: FormatterGo}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Formatter == "" {
		c.Formatter = FormatterGo
	}
	return c, c.Validate()
}

// Validate checks the invariants Resolve establishes.
func (c Config) Validate() error {
	var errs []error
	if c.Src == "" {
		errs = append(errs, errors.New("source path is required"))
	}
	if c.Dst == "" {
		errs = append(errs, errors.New("destination path is required"))
	}
	switch c.Formatter {
	case FormatterGo, FormatterImports:
	default:
		errs = append(errs, fmt.Errorf("unknown formatter %q (supported: %s, %s)", c.Formatter, FormatterGo, FormatterImports))
	}
	return errors.Join(errs...)
}
