package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/common"
	"github.com/Alia5/rsbridge/internal/config"
	"github.com/Alia5/rsbridge/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a config file pre-filled with the flag defaults of one
// subcommand and the log section. Mandatory paths are left out.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"generate,inspect"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the working directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

type configFormat struct {
	ext     string
	marshal func(any) ([]byte, error)
}

var configFormats = map[string]configFormat{
	"json": {"json", func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }},
	"yaml": {"yaml", yaml.Marshal},
	"yml":  {"yaml", yaml.Marshal},
	"toml": {"toml", toml.Marshal},
}

// templateSources lists the flag structs a template can be built from.
var templateSources = map[string]any{
	"generate": Generate{},
	"inspect":  Inspect{},
}

func (c *ConfigInit) Run() error {
	format, ok := configFormats[strings.ToLower(c.Format)]
	if !ok {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	flags, ok := templateSources[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q; expected generate or inspect", c.Command)
	}

	tmpl := flagTemplate(flags)
	tmpl["log"] = flagTemplate(config.Log{})

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + format.ext
	}
	if _, err := os.Stat(dest); err == nil && !c.Force {
		return errors.New("destination exists; use --force to overwrite")
	}

	data, err := format.marshal(tmpl)
	if err != nil {
		return fmt.Errorf("encode %s template: %w", format.ext, err)
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// flagTemplate maps the config key of every flag in the struct v to its
// default. Keys follow kong's resolver lookup: the name tag with dashes
// turned to underscores, else the snake_cased field name.
func flagTemplate(v any) map[string]any {
	t := reflect.TypeOf(v)
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		// kong turns an empty path into the working directory.
		if f.Tag.Get("type") == "path" && f.Tag.Get("default") == "" {
			continue
		}
		key := common.ToSnakeCase(f.Name)
		if name := f.Tag.Get("name"); name != "" {
			key = strings.ReplaceAll(name, "-", "_")
		}
		if def, ok := flagDefault(f.Type.Kind(), f.Tag.Get("default")); ok {
			out[key] = def
		}
	}
	return out
}

// flagDefault parses a default tag into a value of the given kind. Malformed
// or missing defaults yield the zero value.
func flagDefault(kind reflect.Kind, tag string) (any, bool) {
	switch kind {
	case reflect.String:
		return tag, true
	case reflect.Bool:
		b, _ := strconv.ParseBool(tag)
		return b, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(tag, 10, 64)
		return n, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(tag, 10, 64)
		return n, true
	default:
		return nil, false
	}
}

// normalizeFormat maps a format name to its canonical extension using the
// configFormats table; unknown names yield "".
func normalizeFormat(format string) string {
	return configFormats[strings.ToLower(format)].ext
}
