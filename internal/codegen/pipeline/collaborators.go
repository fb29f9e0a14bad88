package pipeline

import (
	"github.com/Alia5/rsbridge/internal/codegen/generator/cheader"
	"github.com/Alia5/rsbridge/internal/codegen/generator/golang"
	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

// SourceModel parses the source text and produces the generated fragments
// that depend only on the model.
type SourceModel interface {
	Parse(text string) (*rsmodel.File, error)
	ConvertStructsToRef(f *rsmodel.File) (*rsmodel.NameMapping, string, error)
	ExtractTraits(f *rsmodel.File) ([]TraitDescriptor, error)
	StructLevels(f *rsmodel.File) (*rsmodel.Levels, error)
	EmitStructs(f *rsmodel.File, levels *rsmodel.Levels, go118 bool) (string, error)
	// ShmInclude is the C block appended to the header when any function uses
	// the shared-memory transport.
	ShmInclude() string
	// ShmRingInit is the Go block that starts the shared-memory rings.
	ShmRingInit() string
}

// TraitDescriptor renders the Go and C text for one trait.
type TraitDescriptor interface {
	Name() string
	Functions() []FunctionDescriptor
	EmitCallbacks() string
	EmitInterface() string
	EmitExports(levels *rsmodel.Levels) string
}

// FunctionDescriptor exposes the transport selector of a trait function: a
// function with a memory-call id is served over the shared-memory ring,
// anything else by a direct foreign call.
type FunctionDescriptor interface {
	MemCallID() (int, bool)
}

// HeaderBridge turns the reference document at path into C declarations,
// restricted to whitelist and preceded by banner.
type HeaderBridge interface {
	Synthesize(path string, whitelist []string, banner string) ([]byte, error)
}

// rustModel is the SourceModel backed by rsmodel and the golang generator.
type rustModel struct{}

func (rustModel) Parse(text string) (*rsmodel.File, error) { return rsmodel.Parse(text) }

func (rustModel) ConvertStructsToRef(f *rsmodel.File) (*rsmodel.NameMapping, string, error) {
	return f.ConvertStructsToRef()
}

func (rustModel) ExtractTraits(f *rsmodel.File) ([]TraitDescriptor, error) {
	traits, err := golang.NewTraits(f)
	if err != nil {
		return nil, err
	}
	out := make([]TraitDescriptor, len(traits))
	for i, t := range traits {
		out[i] = goTrait{t}
	}
	return out, nil
}

func (rustModel) StructLevels(f *rsmodel.File) (*rsmodel.Levels, error) { return f.StructLevels() }

func (rustModel) EmitStructs(_ *rsmodel.File, levels *rsmodel.Levels, go118 bool) (string, error) {
	return golang.EmitStructs(levels, go118), nil
}

func (rustModel) ShmInclude() string  { return golang.ShmInclude }
func (rustModel) ShmRingInit() string { return golang.ShmRingInit }

// goTrait adapts golang.Trait to TraitDescriptor.
type goTrait struct{ *golang.Trait }

func (t goTrait) Functions() []FunctionDescriptor {
	fns := t.Trait.Functions()
	out := make([]FunctionDescriptor, len(fns))
	for i, fn := range fns {
		out[i] = fn
	}
	return out
}

var (
	_ SourceModel  = rustModel{}
	_ HeaderBridge = cheader.Bridge{}
)
