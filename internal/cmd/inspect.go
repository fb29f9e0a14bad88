package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/rsbridge/internal/codegen/meta"
	"github.com/Alia5/rsbridge/internal/codegen/pipeline"
	"github.com/Alia5/rsbridge/internal/configpaths"
)

type Inspect struct {
	Src    string `short:"s" help:"Rust source file holding the structs and traits" type:"path" required:"" env:"RSBRIDGE_SRC"`
	Go118  bool   `name:"go118" help:"Report the imports of a Go 1.18 build" env:"RSBRIDGE_GO118"`
	Format string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output string `short:"o" help:"Write to this file instead of stdout" type:"path"`

	stdout io.Writer `kong:"-"`
}

// Run is called by Kong when the inspect command is executed.
func (c *Inspect) Run(logger *slog.Logger) error {
	md, err := pipeline.New(logger).Inspect(c.Src, c.Go118)
	if err != nil {
		return err
	}
	data, err := encodeMetadata(md, c.Format)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := configpaths.EnsureDir(c.Output); err != nil {
			return err
		}
		return os.WriteFile(c.Output, data, 0o644)
	}
	w := c.stdout
	if w == nil {
		w = os.Stdout
	}
	_, err = w.Write(data)
	return err
}

func encodeMetadata(md *meta.Metadata, format string) ([]byte, error) {
	switch normalizeFormat(format) {
	case "json":
		data, err := json.MarshalIndent(md, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(md)
	case "toml":
		return toml.Marshal(*md)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
