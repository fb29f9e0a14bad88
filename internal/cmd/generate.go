package cmd

import (
	"log/slog"

	"github.com/Alia5/rsbridge/internal/codegen/pipeline"
	"github.com/Alia5/rsbridge/internal/config"
	"github.com/Alia5/rsbridge/internal/log"
)

type Generate struct {
	Src         string `short:"s" help:"Rust source file holding the structs and traits" type:"path" required:"" env:"RSBRIDGE_SRC"`
	Dst         string `short:"d" help:"Destination Go file, overwritten" type:"path" required:"" env:"RSBRIDGE_DST"`
	WithoutMain bool   `help:"Do not emit the func main() {} stub" env:"RSBRIDGE_WITHOUT_MAIN"`
	Go118       bool   `name:"go118" help:"Emit helpers that build with Go 1.18" env:"RSBRIDGE_GO118"`
	NoFmt       bool   `help:"Leave the output unformatted" env:"RSBRIDGE_NO_FMT"`
	Atomic      bool   `help:"Write through temporary files and rename, never exposing a partial destination" env:"RSBRIDGE_ATOMIC"`
	Formatter   string `help:"Formatter run on the output" default:"go" enum:"go,imports" env:"RSBRIDGE_FORMATTER"`
}

func (g *Generate) options() []config.Option {
	return []config.Option{
		config.WithoutMain(g.WithoutMain),
		config.Go118(g.Go118),
		config.NoFmt(g.NoFmt),
		config.Atomic(g.Atomic),
		config.Formatter(g.Formatter),
	}
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger, artifacts log.ArtifactLogger) error {
	cfg, err := config.Resolve(g.Src, g.Dst, g.options()...)
	if err != nil {
		return err
	}
	logger.Info("Starting rsbridge generation", "src", cfg.Src, "dst", cfg.Dst, "formatter", cfg.Formatter, "no_fmt", cfg.NoFmt, "atomic", cfg.Atomic)

	_, err = pipeline.New(logger, pipeline.WithArtifactLogger(artifacts)).Generate(cfg)
	return err
}
