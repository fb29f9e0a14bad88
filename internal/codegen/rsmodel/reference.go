package rsmodel

import (
	"fmt"
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/common"
)

// Built-in reference structs. Every name mapping starts with these two.
const (
	StringRef = "StringRef"
	ListRef   = "ListRef"
)

// RefName returns the C-visible name of the reference form of struct name.
func RefName(name string) string { return name + "Ref" }

// MappingEntry pairs a struct identifier with its header symbol.
type MappingEntry struct {
	Name   string
	Symbol string
}

// NameMapping is the ordered struct → header symbol mapping.
type NameMapping struct {
	entries []MappingEntry
}

// Entries returns the mapping in order.
func (m *NameMapping) Entries() []MappingEntry {
	return append([]MappingEntry(nil), m.entries...)
}

// Symbols returns the mapped symbols in order. This is the exact header whitelist.
func (m *NameMapping) Symbols() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Symbol
	}
	return out
}

// Lookup returns the symbol mapped for name.
func (m *NameMapping) Lookup(name string) (string, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e.Symbol, true
		}
	}
	return "", false
}

// ConversionError reports a declaration that has no reference form.
type ConversionError struct {
	Item string
	Msg  string
}

func (e *ConversionError) Error() string {
	if e.Item == "" {
		return e.Msg
	}
	return e.Item + ": " + e.Msg
}

func conversionErrorf(item, format string, args ...any) error {
	return &ConversionError{Item: item, Msg: fmt.Sprintf(format, args...)}
}

// ConvertStructsToRef builds the name mapping and the reference document: one
// #[repr(C)] struct per mapping entry, with strings and lists replaced by
// pointer/length pairs and nested structs by their reference form.
func (f *File) ConvertStructsToRef() (*NameMapping, string, error) {
	if err := f.checkStructs(); err != nil {
		return nil, "", err
	}

	m := &NameMapping{entries: []MappingEntry{
		{Name: "String", Symbol: StringRef},
		{Name: "Vec", Symbol: ListRef},
	}}
	for _, s := range f.Structs {
		m.entries = append(m.entries, MappingEntry{Name: s.Name, Symbol: RefName(s.Name)})
	}

	var b strings.Builder
	b.WriteString("#[repr(C)]\npub struct StringRef {\n    pub ptr: *const u8,\n    pub len: usize,\n}\n")
	b.WriteString("\n#[repr(C)]\npub struct ListRef {\n    pub ptr: *const (),\n    pub len: usize,\n}\n")
	for _, s := range f.Structs {
		fmt.Fprintf(&b, "\n#[repr(C)]\npub struct %s {\n", RefName(s.Name))
		for _, fl := range s.Fields {
			fmt.Fprintf(&b, "    pub %s: %s,\n", fl.Name, refType(fl.Type))
		}
		b.WriteString("}\n")
	}
	return m, b.String(), nil
}

func refType(t *Type) string {
	switch t.Kind {
	case KindString:
		return StringRef
	case KindList:
		return ListRef
	case KindStruct:
		return RefName(t.Name)
	default:
		return t.Name
	}
}

// checkStructs validates names and field types of all declared structs.
func (f *File) checkStructs() error {
	reserved := map[string]string{
		"String":  "built-in type",
		"Vec":     "built-in type",
		StringRef: "built-in reference struct",
		ListRef:   "built-in reference struct",
	}
	for name := range scalarTypes {
		reserved[name] = "scalar type"
	}

	seen := make(map[string]bool, len(f.Structs))
	for _, s := range f.Structs {
		if seen[s.Name] {
			return conversionErrorf(s.Name, "duplicate struct declaration (line %d)", s.Line)
		}
		seen[s.Name] = true
		if what, ok := reserved[s.Name]; ok {
			return conversionErrorf(s.Name, "struct name collides with %s", what)
		}
	}
	for _, s := range f.Structs {
		if seen[RefName(s.Name)] {
			return conversionErrorf(RefName(s.Name), "struct name collides with the reference form of %s", s.Name)
		}
	}

	for _, s := range f.Structs {
		fieldNames := make(map[string]bool, len(s.Fields))
		spelled := make(map[string]string, 2*len(s.Fields))
		for _, fl := range s.Fields {
			if fieldNames[fl.Name] {
				return conversionErrorf(s.Name, "duplicate field %s", fl.Name)
			}
			fieldNames[fl.Name] = true
			for _, alias := range escapedNames(fl.Name) {
				if other, ok := spelled[alias]; ok && other != fl.Name {
					return conversionErrorf(s.Name, "fields %s and %s are both emitted as %s", other, fl.Name, alias)
				}
				spelled[alias] = fl.Name
			}
			if err := f.checkFieldType(fl.Type, false); err != nil {
				return conversionErrorf(s.Name+"."+fl.Name, "%v", err)
			}
		}
	}
	return nil
}

// escapedNames returns the names a field is emitted under: as is, in C and
// in Go.
func escapedNames(name string) []string {
	out := []string{name, common.CIdent(name)}
	if common.IsGoKeyword(name) {
		out = append(out, name+"_")
	}
	return out
}

func (f *File) checkFieldType(t *Type, inList bool) error {
	switch t.Kind {
	case KindScalar, KindString:
		return nil
	case KindStruct:
		if f.Struct(t.Name) == nil {
			return fmt.Errorf("unknown type %s", t.Name)
		}
		return nil
	case KindList:
		if inList {
			return fmt.Errorf("nested list %s is not supported", t)
		}
		return f.checkFieldType(t.Elem, true)
	default:
		return fmt.Errorf("type %s cannot cross the boundary as a field", t)
	}
}
