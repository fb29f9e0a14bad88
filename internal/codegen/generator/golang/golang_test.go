package golang

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

const serviceSource = `
pub struct Tag { label: String, weight: f32 }
pub struct Item { id: u64, tags: Vec<Tag>, codes: Vec<u16> }
pub struct Flat { type: u8, ok: bool }

pub trait Store {
    fn count(&self) -> usize;
    fn put(&self, item: Item, names: Vec<String>);
    #[mem]
    fn get(&self, id: u64) -> Item;
    async fn describe(&self, flat: Flat) -> String;
    #[mem]
    fn touch(&self);
    fn flat(&self, range: i32) -> Flat;
}
`

func load(t *testing.T, src string) (*rsmodel.File, *rsmodel.Levels, []*Trait) {
	t.Helper()
	f, err := rsmodel.Parse(src)
	require.NoError(t, err)
	levels, err := f.StructLevels()
	require.NoError(t, err)
	traits, err := NewTraits(f)
	require.NoError(t, err)
	return f, levels, traits
}

// assertParses checks that body is syntactically valid Go.
func assertParses(t *testing.T, body string) {
	t.Helper()
	src := "package main\n\nimport \"C\"\n" + body
	_, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.AllErrors)
	assert.NoError(t, err, src)
}

func TestEmitInterface(t *testing.T) {
	_, _, traits := load(t, serviceSource)
	require.Len(t, traits, 1)

	want := `
var StoreImpl Store

type Store interface {
	count() uint
	put(item Item, names []string)
	get(id uint64) Item
	describe(flat Flat) string
	touch()
	flat(range_ int32) Flat
}
`
	assert.Equal(t, want, traits[0].EmitInterface())
}

func TestEmitCallbacks(t *testing.T) {
	_, _, traits := load(t, serviceSource)

	want := `
static inline void Store_count_cb(const void *f_ptr, uintptr_t resp, const void *slot) {
  ((void (*)(uintptr_t, const void *))f_ptr)(resp, slot);
}

static inline void Store_describe_cb(const void *f_ptr, StringRef resp, const void *slot) {
  ((void (*)(StringRef, const void *))f_ptr)(resp, slot);
}

static inline void Store_flat_cb(const void *f_ptr, FlatRef resp, const void *slot) {
  ((void (*)(FlatRef, const void *))f_ptr)(resp, slot);
}
`
	assert.Equal(t, want, traits[0].EmitCallbacks())
}

func TestEmitExports(t *testing.T) {
	_, levels, traits := load(t, serviceSource)
	out := traits[0].EmitExports(levels)
	assertParses(t, out)

	assert.Contains(t, out, `//export CStore_count
func CStore_count(slot unsafe.Pointer, cb unsafe.Pointer) {
	resp := StoreImpl.count()
	resp_ref := C.uintptr_t(resp)
	C.Store_count_cb(cb, resp_ref, slot)
	runtime.KeepAlive(resp)
}`)

	assert.Contains(t, out, `func CStore_put(item C.ItemRef, names C.ListRef) {
	_item := newItem(item)
	_names := newList(names, newString)
	StoreImpl.put(_item, _names)
	runtime.KeepAlive(_item)
}`)

	assert.Contains(t, out, `func CStore_describe(flat C.FlatRef, slot unsafe.Pointer, cb unsafe.Pointer) {
	_flat := newFlat(flat)
	go func() {
		resp := StoreImpl.describe(_flat)
		resp_ref := refString(&resp, nil)
		C.Store_describe_cb(cb, resp_ref, slot)
		runtime.KeepAlive(resp)
	}()
}`)

	assert.Contains(t, out, `func CStore_flat(range_ C.int32_t, slot unsafe.Pointer, cb unsafe.Pointer) {
	_range_ := int32(range_)
	resp := StoreImpl.flat(_range_)
	resp_ref := refFlat(&resp, nil)`)

	assert.Contains(t, out, `func ringHandleStore_get(ptr unsafe.Pointer, pool *ants.MultiPool, post func(any, []byte, unsafe.Pointer)) {
	args := unsafe.Slice((*unsafe.Pointer)(ptr), 1)
	_id := uint64(*(*C.uint64_t)(args[0]))
	task := func() {
		resp := StoreImpl.get(_id)
		resp_ref, buffer := cvt_ref(cntItem, refItem)(&resp)
		post(resp, buffer, unsafe.Pointer(&resp_ref))
	}
	if err := pool.Submit(task); err != nil {
		task()
	}
}`)

	// Every ring request is answered, even when the pool refuses the task.
	assert.Contains(t, out, `		StoreImpl.touch()
		post(nil, nil, nil)
	}
	if err := pool.Submit(task); err != nil {
		task()
	}
}`)
	assert.NotContains(t, out, "_ = pool.Submit")

	assert.Contains(t, out, `//export CStore_init_mem_ffi
func CStore_init_mem_ffi(crr C.QueueMeta, crw C.QueueMeta) {
	ringsInit(crr, crw, []ringHandler{
		ringHandleStore_get,
		ringHandleStore_touch,
	})
}`)
	assert.NotContains(t, out, "//export CStore_get\n")
}

const keywordSource = `
struct Opt { default: u8, long: i64, type: u16, range: u32 }

trait Flags {
    fn set(&self, long: i64, default: bool, unsigned: u32, opt: Opt);
}
`

func TestEmitReservedWordNames(t *testing.T) {
	_, levels, traits := load(t, keywordSource)

	structs := EmitStructs(levels, false)
	assertParses(t, structs)
	assert.Contains(t, structs, `type Opt struct {
	default_ uint8
	long int64
	type_ uint16
	range_ uint32
}`)
	assert.Contains(t, structs, `	return Opt{
		default_: uint8(p.default_),
		long: int64(p.long_),
		type_: uint16(p._type),
		range_: uint32(p._range),
	}`)
	assert.Contains(t, structs, `	return C.OptRef{
		default_: C.uint8_t(p.default_),
		long_: C.int64_t(p.long),
		_type: C.uint16_t(p.type_),
		_range: C.uint32_t(p.range_),
	}`)

	exports := traits[0].EmitExports(levels)
	assertParses(t, exports)
	assert.Contains(t, exports, `func CFlags_set(long_ C.int64_t, default_ C.bool, unsigned_ C.uint32_t, opt C.OptRef) {
	_long := int64(long_)
	_default_ := bool(default_)
	_unsigned := uint32(unsigned_)
	_opt := newOpt(opt)
	FlagsImpl.set(_long, _default_, _unsigned, _opt)`)
}

func TestCgoNames(t *testing.T) {
	tests := []struct {
		ident string
		field string
		param string
	}{
		{"id", "id", "id"},
		{"type", "_type", "type_"},
		{"long", "long_", "long_"},
		{"default", "default_", "default_"},
		{"bool", "bool_", "bool_"},
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.field, cgoField(tt.ident))
			assert.Equal(t, tt.param, paramName(tt.ident))
		})
	}
}

func TestEmitExportsDirectOnly(t *testing.T) {
	_, levels, traits := load(t, "trait Ping { fn ping(); }")
	out := traits[0].EmitExports(levels)
	assert.Contains(t, out, "runtime.KeepAlive(PingImpl)")
	assert.NotContains(t, out, "init_mem_ffi")
	assert.Empty(t, traits[0].EmitCallbacks())
}

func TestEmitStructs(t *testing.T) {
	_, levels, _ := load(t, serviceSource)
	out := EmitStructs(levels, false)
	assertParses(t, out)

	assert.Contains(t, out, "unsafe.StringData")
	assert.NotContains(t, out, "reflect.")

	assert.Contains(t, out, `type Item struct {
	id uint64
	tags []Tag
	codes []uint16
}`)
	assert.Contains(t, out, `func newItem(p C.ItemRef) Item {
	return Item{
		id: uint64(p.id),
		tags: newList(p.tags, newTag),
		codes: newScalars[uint16](p.codes),
	}
}`)
	assert.Contains(t, out, `func cntItem(s *Item, cnt *uint) [0]C.ItemRef {
	cntList(s.tags, cnt, cntTag)
	return [0]C.ItemRef{}
}`)
	assert.Contains(t, out, `func refItem(p *Item, buffer *[]byte) C.ItemRef {
	return C.ItemRef{
		id: C.uint64_t(p.id),
		tags: refList(p.tags, buffer, refTag),
		codes: refScalars(p.codes),
	}
}`)

	// Go keywords are renamed on the Go side and prefixed on the cgo side.
	assert.Contains(t, out, "\ttype_ uint8\n")
	assert.Contains(t, out, "type_: uint8(p._type),")
	assert.Contains(t, out, "_type: C.uint8_t(p.type_),")

	// Dependencies come first.
	assert.Less(t, strings.Index(out, "type Tag struct"), strings.Index(out, "type Item struct"))
}

func TestEmitStructsGo118(t *testing.T) {
	_, levels, _ := load(t, "struct A { s: String }")
	out := EmitStructs(levels, true)
	assertParses(t, out)
	assert.Contains(t, out, "reflect.StringHeader")
	assert.NotContains(t, out, "unsafe.StringData")
}

func TestEmitStructsNoStructs(t *testing.T) {
	_, levels, _ := load(t, "")
	out := EmitStructs(levels, false)
	assertParses(t, out)
	assert.Contains(t, out, "func newString(")
	assert.Contains(t, out, "func cvt_ref[")
}

func TestShmBlocks(t *testing.T) {
	assertParses(t, ShmRingInit)
	assert.Contains(t, ShmRingInit, "mem_ring.NewQueue[ringPayload]")
	assert.Contains(t, ShmRingInit, "ants.NewMultiPool")
	assert.Contains(t, ShmInclude, "} QueueMeta;")
	assert.NotContains(t, ShmInclude, "/*")
}

func TestNewTraitsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown param", "trait T { fn f(x: Nope); }", "T::f: parameter x: unknown type Nope"},
		{"unknown return", "trait T { fn f() -> Nope; }", "T::f: return type: unknown type Nope"},
		{"list return", "trait T { fn f() -> Vec<u8>; }", "Vec<u8> is not supported"},
		{"pointer param", "trait T { fn f(p: *const u8); }", "*const u8 is not supported"},
		{"reserved param", "trait T { fn f(slot: u8); }", "parameter name slot is reserved"},
		{"duplicate fn", "trait T { fn f(); fn f(); }", "T::f: duplicate function"},
		{"duplicate trait", "trait T { } trait T { }", "T: duplicate trait declaration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := rsmodel.Parse(tt.src)
			require.NoError(t, err)
			_, err = NewTraits(f)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
