// Package pipeline turns one Rust source file into one cgo Go file.
//
// A run executes seven stages strictly in order and stops at the first
// failure:
//
//  1. load      read the source file
//  2. parse     build the source model
//  3. reference convert structs to their C form and write the reference document
//  4. header    synthesize C declarations from the reference document
//  5. traits    extract traits and decide the transports
//  6. assemble  build the final document
//  7. commit    write the final document and format it
//
// Every failure is a *fault.Error naming the stage. Nothing is retried.
package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"github.com/Alia5/rsbridge/internal/codegen/fault"
	"github.com/Alia5/rsbridge/internal/codegen/formatter"
	"github.com/Alia5/rsbridge/internal/codegen/generator/cheader"
	"github.com/Alia5/rsbridge/internal/config"
	"github.com/Alia5/rsbridge/internal/log"
)

// Banner is the provenance comment heading the C header.
const Banner = "// Generated by rsbridge. Please DO NOT edit this C part manually."

// Generator runs the pipeline.
type Generator struct {
	logger    *slog.Logger
	artifacts log.ArtifactLogger
	model     SourceModel
	bridge    HeaderBridge
	formatter formatter.Formatter
}

// Option configures a Generator.
type Option func(*Generator)

// WithSourceModel replaces the Rust source model.
func WithSourceModel(m SourceModel) Option { return func(g *Generator) { g.model = m } }

// WithHeaderBridge replaces the C header bridge.
func WithHeaderBridge(b HeaderBridge) Option { return func(g *Generator) { g.bridge = b } }

// WithFormatter fixes the formatter, ignoring Config.Formatter.
func WithFormatter(f formatter.Formatter) Option { return func(g *Generator) { g.formatter = f } }

// WithArtifactLogger receives the reference document and the header text.
func WithArtifactLogger(a log.ArtifactLogger) Option { return func(g *Generator) { g.artifacts = a } }

// New creates a Generator.
func New(logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		logger:    logger,
		artifacts: log.NewArtifact(nil),
		model:     rustModel{},
		bridge:    cheader.Bridge{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result describes a committed run.
type Result struct {
	Path             string
	UsesSharedMemory bool
	UsesDirectCall   bool
	// Size and Digest describe the document as assembled, before formatting.
	Size   int
	Digest [blake2b.Size256]byte
}

// DigestHex returns the hex-encoded BLAKE2b-256 digest.
func (r *Result) DigestHex() string { return hex.EncodeToString(r.Digest[:]) }

// Generate runs all seven stages for cfg.
func (g *Generator) Generate(cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	fmtr, err := g.formatterFor(cfg)
	if err != nil {
		return nil, err
	}

	c := newCommitter(cfg)
	defer c.cleanup()

	// 1. load
	text, err := load(cfg.Src)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Loaded source", "stage", fault.StageLoad, "path", cfg.Src, "bytes", len(text))

	// 2. parse
	file, err := g.model.Parse(text)
	if err != nil {
		return nil, fault.Wrap(fault.StageParse, fault.KindParse, err, cfg.Src)
	}
	g.logger.Debug("Parsed source", "stage", fault.StageParse, "structs", len(file.Structs), "traits", len(file.Traits))
	for _, item := range file.Skipped {
		g.logger.Log(context.Background(), log.LevelTrace, "Skipped item", "item", item)
	}

	// 3. reference
	mapping, refDoc, err := g.model.ConvertStructsToRef(file)
	if err != nil {
		return nil, fault.Wrap(fault.StageReference, fault.KindConversion, err, "convert structs to reference form")
	}
	g.artifacts.Log("reference document", []byte(refDoc))
	refPath, err := c.writeReference([]byte(refDoc))
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Wrote reference document", "stage", fault.StageReference, "path", refPath, "symbols", len(mapping.Symbols()))

	// 4. header
	whitelist := mapping.Symbols()
	header, err := g.bridge.Synthesize(refPath, whitelist, Banner)
	if err != nil {
		return nil, fault.Wrap(fault.StageHeader, fault.KindHeaderGeneration, err, "synthesize header")
	}
	g.logger.Debug("Synthesized header", "stage", fault.StageHeader, "bytes", len(header), "whitelist", whitelist)

	// 5. traits
	if off := invalidUTF8(header); off >= 0 {
		return nil, fault.InvalidUTF8(fault.StageTraits, header, off)
	}
	traits, err := g.model.ExtractTraits(file)
	if err != nil {
		return nil, fault.Wrap(fault.StageTraits, fault.KindConversion, err, "extract traits")
	}
	tr := decideTransport(traits)
	headerText := extendHeader(string(header), traits, tr, g.model)
	g.artifacts.Log("header", []byte(headerText))
	g.logger.Debug("Extracted traits", "stage", fault.StageTraits, "traits", len(traits),
		"shared_memory", tr.SharedMemory, "direct_call", tr.DirectCall)

	// 6. assemble
	levels, err := g.model.StructLevels(file)
	if err != nil {
		return nil, fault.Wrap(fault.StageAssemble, fault.KindConversion, err, "order structs")
	}
	structs, err := g.model.EmitStructs(file, levels, cfg.Go118)
	if err != nil {
		return nil, fault.Wrap(fault.StageAssemble, fault.KindConversion, err, "emit structs")
	}
	doc, err := assemble(document{
		header:      headerText,
		imports:     Imports(tr, cfg.Go118),
		traits:      traits,
		levels:      levels,
		structs:     structs,
		ringInit:    ringInit(tr, g.model),
		withoutMain: cfg.WithoutMain,
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Assembled document", "stage", fault.StageAssemble, "bytes", len(doc))

	// 7. commit
	if err := c.commit(doc, fmtr); err != nil {
		return nil, err
	}

	res := &Result{
		Path:             cfg.Dst,
		UsesSharedMemory: tr.SharedMemory,
		UsesDirectCall:   tr.DirectCall,
		Size:             len(doc),
		Digest:           blake2b.Sum256(doc),
	}
	g.logger.Info("Generated Go bridge",
		"dst", res.Path,
		"bytes", res.Size,
		"digest", res.DigestHex(),
		"shared_memory", res.UsesSharedMemory,
		"direct_call", res.UsesDirectCall,
		"formatted", fmtr != nil)
	return res, nil
}

func (g *Generator) formatterFor(cfg config.Config) (formatter.Formatter, error) {
	if cfg.NoFmt {
		return nil, nil
	}
	if g.formatter != nil {
		return g.formatter, nil
	}
	return formatter.New(cfg.Formatter)
}

func load(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fault.IO(fault.StageLoad, path, err, "read source")
	}
	if off := invalidUTF8(raw); off >= 0 {
		f := fault.InvalidUTF8(fault.StageLoad, raw, off)
		f.Path = path
		return "", f
	}
	return string(raw), nil
}

// invalidUTF8 returns the offset of the first invalid UTF-8 sequence in b, or
// -1 if b is valid.
func invalidUTF8(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for off := 0; off < len(b); {
		r, size := utf8.DecodeRune(b[off:])
		if r == utf8.RuneError && size == 1 {
			return off
		}
		off += size
	}
	return -1
}

// extendHeader appends every trait's callbacks, in discovery order, and the
// shared-memory declarations when that transport is in use.
func extendHeader(header string, traits []TraitDescriptor, tr Transport, model SourceModel) string {
	var b strings.Builder
	b.WriteString(header)
	for _, t := range traits {
		b.WriteString(t.EmitCallbacks())
	}
	if tr.SharedMemory {
		b.WriteString(model.ShmInclude())
	}
	return b.String()
}

func ringInit(tr Transport, model SourceModel) string {
	if !tr.SharedMemory {
		return ""
	}
	return model.ShmRingInit()
}
