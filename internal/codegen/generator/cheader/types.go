package cheader

import (
	"fmt"

	"github.com/Alia5/rsbridge/internal/codegen/common"
	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

var scalarCTypes = map[string]string{
	"u8":    "uint8_t",
	"u16":   "uint16_t",
	"u32":   "uint32_t",
	"u64":   "uint64_t",
	"usize": "uintptr_t",
	"i8":    "int8_t",
	"i16":   "int16_t",
	"i32":   "int32_t",
	"i64":   "int64_t",
	"isize": "intptr_t",
	"f32":   "float",
	"f64":   "double",
	"bool":  "bool",
	"char":  "uint32_t",
}

// CType returns the C spelling of a reference-document type.
func CType(t *rsmodel.Type) string {
	switch t.Kind {
	case rsmodel.KindScalar:
		return scalarCTypes[t.Name]
	case rsmodel.KindUnit:
		return "void"
	case rsmodel.KindPointer:
		if t.Mut {
			return CType(t.Elem) + " *"
		}
		return "const " + CType(t.Elem) + " *"
	case rsmodel.KindString:
		return rsmodel.StringRef
	case rsmodel.KindList:
		return rsmodel.ListRef
	default:
		return t.Name
	}
}

// fieldDecl renders a member declaration. Members named after C reserved
// words get a trailing "_", the way cbindgen spells them.
func fieldDecl(f rsmodel.Field) string {
	ct, name := CType(f.Type), common.CIdent(f.Name)
	if ct[len(ct)-1] == '*' {
		return fmt.Sprintf("%s%s", ct, name)
	}
	return fmt.Sprintf("%s %s", ct, name)
}
