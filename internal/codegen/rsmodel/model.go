// Package rsmodel parses the Rust subset rsbridge accepts and derives the
// structural model the generators work from: struct and trait declarations,
// the reference (C ABI) form of the structs and their dependency levels.
package rsmodel

import "strings"

// TypeKind classifies a Type.
type TypeKind int

const (
	KindScalar  TypeKind = iota // u8, i32, f64, bool, char, ...
	KindString                  // String
	KindList                    // Vec<T>
	KindStruct                  // user declared struct
	KindPointer                 // *const T / *mut T
	KindUnit                    // ()
	KindFuture                  // impl Future<Output = T>
)

var scalarTypes = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "isize": true,
	"f32": true, "f64": true, "bool": true, "char": true,
}

// IsScalar reports whether name is a supported Rust scalar type.
func IsScalar(name string) bool { return scalarTypes[name] }

// Type is a parsed Rust type expression.
type Type struct {
	Kind TypeKind
	Name string // scalar or struct name
	Elem *Type  // list element, pointer target, future output
	Mut  bool   // *mut
}

// String returns the Rust spelling of t.
func (t *Type) String() string {
	if t == nil {
		return "()"
	}
	switch t.Kind {
	case KindString:
		return "String"
	case KindList:
		return "Vec<" + t.Elem.String() + ">"
	case KindPointer:
		if t.Mut {
			return "*mut " + t.Elem.String()
		}
		return "*const " + t.Elem.String()
	case KindUnit:
		return "()"
	case KindFuture:
		return "impl Future<Output = " + t.Elem.String() + ">"
	default:
		return t.Name
	}
}

// Attr is an outer attribute such as #[mem] or #[repr(C)].
type Attr struct {
	Name string
	Args string
}

// Field is a named struct field.
type Field struct {
	Name string
	Type *Type
}

// Struct is a struct declaration.
type Struct struct {
	Name   string
	Fields []Field
	Attrs  []Attr
	Line   int
}

// Param is a trait function parameter.
type Param struct {
	Name string
	Type *Type
}

// Func is a trait function.
type Func struct {
	Name   string
	Params []Param
	// Ret is nil when the function returns nothing. For async functions it is
	// the future's output type.
	Ret   *Type
	Async bool
	Attrs []Attr

	memCallID int
	mem       bool
}

// MemCallID returns the function's memory-call identifier. The identifier is
// present only for functions served over the shared-memory ring.
func (f *Func) MemCallID() (int, bool) {
	return f.memCallID, f.mem
}

// Trait is a trait declaration.
type Trait struct {
	Name  string
	Funcs []*Func
	Attrs []Attr
	Line  int
}

// File is a parsed source file.
type File struct {
	Structs []*Struct
	Traits  []*Trait
	// Skipped lists items the parser stepped over (impl blocks, enums, ...).
	Skipped []string
}

// Struct returns the struct declared as name, or nil.
func (f *File) Struct(name string) *Struct {
	for _, s := range f.Structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// HasAttr reports whether attrs contains an attribute called name.
func HasAttr(attrs []Attr, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}
