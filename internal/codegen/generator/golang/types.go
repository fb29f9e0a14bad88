// Package golang renders the Go side of the bridge: trait interfaces, cgo
// exports and callbacks, struct definitions with their C conversions, and the
// fixed shared-memory ring blocks.
package golang

import (
	"fmt"
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/common"
	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

type scalar struct {
	goType string
	cType  string
}

var scalars = map[string]scalar{
	"u8":    {"uint8", "C.uint8_t"},
	"u16":   {"uint16", "C.uint16_t"},
	"u32":   {"uint32", "C.uint32_t"},
	"u64":   {"uint64", "C.uint64_t"},
	"usize": {"uint", "C.uintptr_t"},
	"i8":    {"int8", "C.int8_t"},
	"i16":   {"int16", "C.int16_t"},
	"i32":   {"int32", "C.int32_t"},
	"i64":   {"int64", "C.int64_t"},
	"isize": {"int", "C.intptr_t"},
	"f32":   {"float32", "C.float"},
	"f64":   {"float64", "C.double"},
	"bool":  {"bool", "C.bool"},
	"char":  {"rune", "C.uint32_t"},
}

// GoType returns the Go spelling of t.
func GoType(t *rsmodel.Type) string {
	switch t.Kind {
	case rsmodel.KindScalar:
		return scalars[t.Name].goType
	case rsmodel.KindString:
		return "string"
	case rsmodel.KindList:
		return "[]" + GoType(t.Elem)
	default:
		return t.Name
	}
}

// CGoType returns the cgo spelling of the C form of t.
func CGoType(t *rsmodel.Type) string {
	switch t.Kind {
	case rsmodel.KindScalar:
		return scalars[t.Name].cType
	case rsmodel.KindString:
		return "C." + rsmodel.StringRef
	case rsmodel.KindList:
		return "C." + rsmodel.ListRef
	default:
		return "C." + rsmodel.RefName(t.Name)
	}
}

// cType is the C spelling used in callback trampolines.
func cType(t *rsmodel.Type) string {
	return CGoType(t)[len("C."):]
}

// fromC returns the expression converting the C value expr to its Go form.
func fromC(expr string, t *rsmodel.Type) string {
	switch t.Kind {
	case rsmodel.KindScalar:
		return fmt.Sprintf("%s(%s)", GoType(t), expr)
	case rsmodel.KindString:
		return fmt.Sprintf("newString(%s)", expr)
	case rsmodel.KindList:
		if t.Elem.Kind == rsmodel.KindScalar {
			return fmt.Sprintf("newScalars[%s](%s)", GoType(t.Elem), expr)
		}
		return fmt.Sprintf("newList(%s, %s)", expr, converter("new", t.Elem))
	default:
		return fmt.Sprintf("new%s(%s)", t.Name, expr)
	}
}

// toC returns the expression converting the Go value addressed by ptr to its
// C form. buffer names the scratch buffer for list contents.
func toC(ptr string, t *rsmodel.Type, buffer string) string {
	switch t.Kind {
	case rsmodel.KindScalar:
		return fmt.Sprintf("%s(%s)", CGoType(t), deref(ptr))
	case rsmodel.KindString:
		return fmt.Sprintf("refString(%s, %s)", ptr, buffer)
	case rsmodel.KindList:
		if t.Elem.Kind == rsmodel.KindScalar {
			return fmt.Sprintf("refScalars(%s)", deref(ptr))
		}
		return fmt.Sprintf("refList(%s, %s, %s)", deref(ptr), buffer, converter("ref", t.Elem))
	default:
		return fmt.Sprintf("ref%s(%s, %s)", t.Name, ptr, buffer)
	}
}

func deref(ptr string) string {
	if strings.HasPrefix(ptr, "&") {
		return ptr[1:]
	}
	return "*" + ptr
}

// converter names the new/ref/cnt helper for a list element type.
func converter(prefix string, t *rsmodel.Type) string {
	if t.Kind == rsmodel.KindString {
		return prefix + "String"
	}
	return prefix + t.Name
}

// needsBuffer reports whether converting a value of type t to C writes into
// a scratch buffer.
func needsBuffer(t *rsmodel.Type, levels *rsmodel.Levels) bool {
	switch t.Kind {
	case rsmodel.KindList:
		return t.Elem.Kind != rsmodel.KindScalar
	case rsmodel.KindStruct:
		return levels.Deep(t.Name)
	default:
		return false
	}
}

// goName returns ident, suffixed with "_" when it is a Go keyword.
func goName(ident string) string {
	if common.IsGoKeyword(ident) {
		return ident + "_"
	}
	return ident
}

// cgoField returns the selector cgo uses for C field ident. C reserved words
// carry the header's "_" suffix; other Go keywords take cgo's "_" prefix.
func cgoField(ident string) string {
	if common.IsCKeyword(ident) {
		return common.CIdent(ident)
	}
	if common.IsGoKeyword(ident) {
		return "_" + ident
	}
	return ident
}

// paramName names a parameter of a cgo export. cgo copies it into the C
// prototype of _cgo_export.h, so it must be valid in both languages.
func paramName(ident string) string {
	if common.IsGoKeyword(ident) || common.IsCKeyword(ident) {
		return ident + "_"
	}
	return ident
}
