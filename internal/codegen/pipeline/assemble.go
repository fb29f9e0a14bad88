package pipeline

import (
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/fault"
	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

// Import paths of the generated document.
const (
	ImportUnsafe  = `"unsafe"`
	ImportRuntime = `"runtime"`
	ImportReflect = `"reflect"`
	ImportMemRing = `mem_ring "github.com/ihciah/rust2go/mem-ring"`
	ImportAnts    = `"github.com/panjf2000/ants/v2"`
)

// GeneratedComment marks the document as machine-generated for Go tooling.
const GeneratedComment = "// Code generated by rsbridge. DO NOT EDIT."

// Transport is the run-wide transport decision. With zero traits both are
// false.
type Transport struct {
	// SharedMemory is set when at least one function has a memory-call id.
	SharedMemory bool
	// DirectCall is set when at least one function lacks one.
	DirectCall bool
}

func decideTransport(traits []TraitDescriptor) Transport {
	var tr Transport
	for _, t := range traits {
		for _, fn := range t.Functions() {
			if _, ok := fn.MemCallID(); ok {
				tr.SharedMemory = true
			} else {
				tr.DirectCall = true
			}
		}
	}
	return tr
}

// Imports returns the import specs of the generated document in order.
// The unsafe import is unconditional: struct conversion helpers are always
// emitted and use it.
func Imports(tr Transport, go118 bool) []string {
	imports := []string{ImportUnsafe}
	if tr.DirectCall {
		imports = append(imports, ImportRuntime)
	}
	if go118 {
		imports = append(imports, ImportReflect)
	}
	if tr.SharedMemory {
		imports = append(imports, ImportMemRing, ImportAnts)
	}
	return imports
}

type document struct {
	header      string
	imports     []string
	traits      []TraitDescriptor
	levels      *rsmodel.Levels
	structs     string
	ringInit    string
	withoutMain bool
}

// assemble concatenates the document sections in their fixed order: cgo
// preamble with the header, imports, per-trait interface and exports, struct
// definitions, ring init, entry point.
func assemble(d document) ([]byte, error) {
	if strings.Contains(d.header, "*/") {
		return nil, fault.Wrap(fault.StageAssemble, fault.KindHeaderGeneration, nil,
			"header text contains \"*/\" and cannot be embedded in the cgo preamble")
	}

	var b strings.Builder
	b.WriteString(GeneratedComment)
	b.WriteString("\n\npackage main\n\n/*\n")
	b.WriteString(d.header)
	if !strings.HasSuffix(d.header, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("*/\nimport \"C\"\n\nimport (\n")
	for _, imp := range d.imports {
		b.WriteString("\t")
		b.WriteString(imp)
		b.WriteString("\n")
	}
	b.WriteString(")\n")

	for _, t := range d.traits {
		b.WriteString(t.EmitInterface())
		b.WriteString(t.EmitExports(d.levels))
	}

	b.WriteString(d.structs)
	b.WriteString(d.ringInit)

	if !d.withoutMain {
		b.WriteString("\nfunc main() {}\n")
	}
	return []byte(b.String()), nil
}
