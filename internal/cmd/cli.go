// Package cmd holds the kong command tree of the rsbridge binary.
package cmd

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/rsbridge/internal/config"
)

// CLI is the root of the command line.
type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml); flags and env override it" type:"path" env:"RSBRIDGE_CONFIG"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        config.Log       `embed:"" prefix:"log."`

	Generate Generate      `cmd:"" help:"Generate a cgo Go bridge from a Rust source file"`
	Inspect  Inspect       `cmd:"" help:"Describe what generate would emit for a Rust source file"`
	Config   ConfigCommand `cmd:"" help:"Configuration helpers"`
}
