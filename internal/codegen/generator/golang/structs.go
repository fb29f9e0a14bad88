package golang

import (
	"fmt"
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

const helpersCommon = `
func newString(s C.StringRef) string {
	return string(unsafe.Slice((*byte)(unsafe.Pointer(s.ptr)), int(s.len)))
}

func cntString(_ *string, _ *uint) [0]C.StringRef { return [0]C.StringRef{} }

func newScalars[T any](l C.ListRef) []T {
	if l.len == 0 {
		return nil
	}
	return append([]T(nil), unsafe.Slice((*T)(l.ptr), int(l.len))...)
}

func refScalars[T any](s []T) C.ListRef {
	if len(s) == 0 {
		return C.ListRef{ptr: nil, len: 0}
	}
	return C.ListRef{ptr: unsafe.Pointer(&s[0]), len: C.uintptr_t(len(s))}
}

func newList[CT, GT any](l C.ListRef, conv func(CT) GT) []GT {
	if l.len == 0 {
		return nil
	}
	in := unsafe.Slice((*CT)(l.ptr), int(l.len))
	out := make([]GT, len(in))
	for i := range in {
		out[i] = conv(in[i])
	}
	return out
}

func cntList[GT, CT any](s []GT, cnt *uint, elem func(*GT, *uint) [0]CT) [0]C.ListRef {
	var zero CT
	*cnt += uint(len(s)) * uint(unsafe.Sizeof(zero))
	for i := range s {
		elem(&s[i], cnt)
	}
	return [0]C.ListRef{}
}

func refList[GT, CT any](s []GT, buffer *[]byte, ref func(*GT, *[]byte) CT) C.ListRef {
	if len(s) == 0 {
		return C.ListRef{ptr: nil, len: 0}
	}
	var zero CT
	size := int(unsafe.Sizeof(zero))
	region := (*buffer)[:size*len(s)]
	*buffer = (*buffer)[size*len(s):]
	for i := range s {
		*(*CT)(unsafe.Pointer(&region[i*size])) = ref(&s[i], buffer)
	}
	return C.ListRef{ptr: unsafe.Pointer(&region[0]), len: C.uintptr_t(len(s))}
}

func cvt_ref[R, CR any](cnt func(*R, *uint) [0]CR, ref func(*R, *[]byte) CR) func(*R) (CR, []byte) {
	return func(p *R) (CR, []byte) {
		var size uint
		cnt(p, &size)
		buffer := make([]byte, size)
		rest := buffer
		return ref(p, &rest), buffer
	}
}
`

const refStringUnsafe = `
func refString(s *string, _ *[]byte) C.StringRef {
	return C.StringRef{
		ptr: (*C.uint8_t)(unsafe.StringData(*s)),
		len: C.uintptr_t(len(*s)),
	}
}
`

const refStringReflect = `
func refString(s *string, _ *[]byte) C.StringRef {
	h := (*reflect.StringHeader)(unsafe.Pointer(s))
	return C.StringRef{
		ptr: (*C.uint8_t)(unsafe.Pointer(h.Data)),
		len: C.uintptr_t(h.Len),
	}
}
`

// EmitStructs renders the conversion helpers followed by, for every struct in
// level order, its Go definition and its new/cnt/ref conversions. With go118
// set, refString avoids APIs newer than Go 1.18 and uses the reflect package.
func EmitStructs(levels *rsmodel.Levels, go118 bool) string {
	var b strings.Builder
	b.WriteString(helpersCommon)
	if go118 {
		b.WriteString(refStringReflect)
	} else {
		b.WriteString(refStringUnsafe)
	}
	for _, s := range levels.Order() {
		emitStruct(&b, s, levels)
	}
	return b.String()
}

func emitStruct(b *strings.Builder, s *rsmodel.Struct, levels *rsmodel.Levels) {
	ref := "C." + rsmodel.RefName(s.Name)

	fmt.Fprintf(b, "\ntype %s struct {\n", s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(b, "\t%s %s\n", goName(f.Name), GoType(f.Type))
	}
	b.WriteString("}\n")

	fmt.Fprintf(b, "\nfunc new%s(p %s) %s {\n\treturn %s{\n", s.Name, ref, s.Name, s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(b, "\t\t%s: %s,\n", goName(f.Name), fromC("p."+cgoField(f.Name), f.Type))
	}
	b.WriteString("\t}\n}\n")

	fmt.Fprintf(b, "\nfunc cnt%s(s *%s, cnt *uint) [0]%s {\n", s.Name, s.Name, ref)
	for _, f := range s.Fields {
		if !needsBuffer(f.Type, levels) {
			continue
		}
		field := "s." + goName(f.Name)
		if f.Type.Kind == rsmodel.KindList {
			fmt.Fprintf(b, "\tcntList(%s, cnt, %s)\n", field, converter("cnt", f.Type.Elem))
		} else {
			fmt.Fprintf(b, "\tcnt%s(&%s, cnt)\n", f.Type.Name, field)
		}
	}
	fmt.Fprintf(b, "\treturn [0]%s{}\n}\n", ref)

	fmt.Fprintf(b, "\nfunc ref%s(p *%s, buffer *[]byte) %s {\n\treturn %s{\n", s.Name, s.Name, ref, ref)
	for _, f := range s.Fields {
		fmt.Fprintf(b, "\t\t%s: %s,\n", cgoField(f.Name), toC("&p."+goName(f.Name), f.Type, "buffer"))
	}
	b.WriteString("\t}\n}\n")
}
