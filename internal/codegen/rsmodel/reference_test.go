package rsmodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(src)
	require.NoError(t, err)
	return f
}

func TestConvertStructsToRef(t *testing.T) {
	f := mustParse(t, `
struct Point { x: i32, y: i32 }
struct Path { name: String, points: Vec<Point>, origin: Point }
`)
	m, doc, err := f.ConvertStructsToRef()
	require.NoError(t, err)

	assert.Equal(t, []string{"StringRef", "ListRef", "PointRef", "PathRef"}, m.Symbols())
	sym, ok := m.Lookup("Path")
	assert.True(t, ok)
	assert.Equal(t, "PathRef", sym)
	_, ok = m.Lookup("Missing")
	assert.False(t, ok)

	want := `#[repr(C)]
pub struct StringRef {
    pub ptr: *const u8,
    pub len: usize,
}

#[repr(C)]
pub struct ListRef {
    pub ptr: *const (),
    pub len: usize,
}

#[repr(C)]
pub struct PointRef {
    pub x: i32,
    pub y: i32,
}

#[repr(C)]
pub struct PathRef {
    pub name: StringRef,
    pub points: ListRef,
    pub origin: PointRef,
}
`
	assert.Equal(t, want, doc)

	// The reference document is itself in the accepted subset.
	rf, err := Parse(doc)
	require.NoError(t, err)
	assert.Len(t, rf.Structs, 4)
}

func TestConvertStructsToRefNoStructs(t *testing.T) {
	m, doc, err := mustParse(t, "trait T { fn f(); }").ConvertStructsToRef()
	require.NoError(t, err)
	assert.Equal(t, []string{"StringRef", "ListRef"}, m.Symbols())
	assert.Contains(t, doc, "pub struct ListRef")
}

func TestConvertStructsToRefKeywordFields(t *testing.T) {
	_, doc, err := mustParse(t, "struct Opt { default: u8, long: i64, bool: bool }").ConvertStructsToRef()
	require.NoError(t, err)
	// The Rust side keeps the declared names.
	assert.Contains(t, doc, "    pub default: u8,\n    pub long: i64,\n    pub bool: bool,\n")
}

func TestConvertStructsToRefErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"duplicate", "struct A { x: u8 } struct A { y: u8 }", "A: duplicate struct declaration"},
		{"builtin", "struct String { x: u8 }", "collides with built-in type"},
		{"reference symbol", "struct A { x: u8 } struct ARef { y: u8 }", "ARef: struct name collides"},
		{"unknown", "struct A { b: Missing }", "A.b: unknown type Missing"},
		{"unknown elem", "struct A { b: Vec<Missing> }", "unknown type Missing"},
		{"pointer field", "struct A { p: *const u8 }", "cannot cross the boundary"},
		{"nested list", "struct A { v: Vec<Vec<u8>> }", "nested list"},
		{"duplicate field", "struct A { x: u8, x: u16 }", "duplicate field x"},
		{"c spelling", "struct A { long: i64, long_: i64 }", "A: fields long and long_ are both emitted as long_"},
		{"go spelling", "struct A { range_: u8, range: u8 }", "A: fields range_ and range are both emitted as range_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := mustParse(t, tt.src).ConvertStructsToRef()
			require.Error(t, err)
			var ce *ConversionError
			assert.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestStructLevels(t *testing.T) {
	f := mustParse(t, `
struct Outer { inner: Middle, names: Vec<String> }
struct Leaf { v: u8 }
struct Middle { leaves: Vec<Leaf>, first: Leaf }
struct Flat { a: u8, b: String }
`)
	l, err := f.StructLevels()
	require.NoError(t, err)

	var order []string
	for _, s := range l.Order() {
		order = append(order, s.Name)
	}
	assert.Equal(t, []string{"Leaf", "Flat", "Middle", "Outer"}, order)

	assert.Equal(t, 2, l.Level("Outer"))
	assert.Equal(t, 1, l.Level("Middle"))
	assert.Equal(t, 0, l.Level("Leaf"))
	assert.Equal(t, -1, l.Level("Nope"))

	assert.True(t, l.Deep("Outer"))
	assert.True(t, l.Deep("Middle"))
	assert.False(t, l.Deep("Leaf"))
	assert.False(t, l.Deep("Flat"))
}

func TestStructLevelsScalarListsAreShallow(t *testing.T) {
	f := mustParse(t, `
struct Bytes { data: Vec<u8>, ids: Vec<u64> }
struct Wrapper { inner: Bytes, n: u32 }
struct Named { names: Vec<String> }
struct Holder { bytes: Vec<Bytes> }
`)
	l, err := f.StructLevels()
	require.NoError(t, err)

	assert.False(t, l.Deep("Bytes"))
	assert.False(t, l.Deep("Wrapper"))
	assert.True(t, l.Deep("Named"))
	assert.True(t, l.Deep("Holder"))
}

func TestStructLevelsDependenciesPrecede(t *testing.T) {
	f := mustParse(t, `
struct D { c: C, a: A }
struct C { b: Vec<B> }
struct B { a: A }
struct A { x: u64 }
`)
	l, err := f.StructLevels()
	require.NoError(t, err)

	pos := map[string]int{}
	for i, s := range l.Order() {
		pos[s.Name] = i
	}
	for _, s := range f.Structs {
		for _, fl := range s.Fields {
			dep := fl.Type
			if dep.Kind == KindList {
				dep = dep.Elem
			}
			if dep.Kind == KindStruct {
				assert.Less(t, pos[dep.Name], pos[s.Name], "%s before %s", dep.Name, s.Name)
			}
		}
	}
}

func TestStructLevelsCycle(t *testing.T) {
	f := mustParse(t, `
struct A { b: B }
struct B { c: Vec<C> }
struct C { a: A }
`)
	_, err := f.StructLevels()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "struct cycle A -> B -> C -> A")
}
