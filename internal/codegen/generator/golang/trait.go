package golang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

// Local names used by generated exports. Parameters may not shadow them.
var reservedParams = map[string]bool{
	"slot": true, "cb": true, "resp": true, "resp_ref": true, "buffer": true,
	"ptr": true, "pool": true, "post": true, "args": true,
}

// Trait renders the Go side of one Rust trait.
type Trait struct {
	name  string
	funcs []*rsmodel.Func
}

// NewTraits validates every trait of file and wraps it for rendering.
// Parameters may be scalars, strings, declared structs or lists of those;
// results may be scalars, strings or declared structs.
func NewTraits(file *rsmodel.File) ([]*Trait, error) {
	seen := map[string]bool{}
	out := make([]*Trait, 0, len(file.Traits))
	for _, t := range file.Traits {
		if seen[t.Name] {
			return nil, &rsmodel.ConversionError{Item: t.Name, Msg: "duplicate trait declaration"}
		}
		seen[t.Name] = true

		fnames := map[string]bool{}
		for _, fn := range t.Funcs {
			item := t.Name + "::" + fn.Name
			if fnames[fn.Name] {
				return nil, &rsmodel.ConversionError{Item: item, Msg: "duplicate function"}
			}
			fnames[fn.Name] = true

			for _, p := range fn.Params {
				if reservedParams[p.Name] {
					return nil, &rsmodel.ConversionError{Item: item, Msg: fmt.Sprintf("parameter name %s is reserved", p.Name)}
				}
				if err := checkParam(file, p.Type, false); err != nil {
					return nil, &rsmodel.ConversionError{Item: item, Msg: fmt.Sprintf("parameter %s: %v", p.Name, err)}
				}
			}
			if fn.Ret != nil {
				if err := checkReturn(file, fn.Ret); err != nil {
					return nil, &rsmodel.ConversionError{Item: item, Msg: fmt.Sprintf("return type: %v", err)}
				}
			}
		}
		out = append(out, &Trait{name: t.Name, funcs: t.Funcs})
	}
	return out, nil
}

func checkParam(file *rsmodel.File, t *rsmodel.Type, inList bool) error {
	switch t.Kind {
	case rsmodel.KindScalar, rsmodel.KindString:
		return nil
	case rsmodel.KindStruct:
		if file.Struct(t.Name) == nil {
			return fmt.Errorf("unknown type %s", t.Name)
		}
		return nil
	case rsmodel.KindList:
		if inList {
			return fmt.Errorf("nested list %s is not supported", t)
		}
		return checkParam(file, t.Elem, true)
	default:
		return fmt.Errorf("type %s is not supported", t)
	}
}

func checkReturn(file *rsmodel.File, t *rsmodel.Type) error {
	switch t.Kind {
	case rsmodel.KindScalar, rsmodel.KindString:
		return nil
	case rsmodel.KindStruct:
		if file.Struct(t.Name) == nil {
			return fmt.Errorf("unknown type %s", t.Name)
		}
		return nil
	default:
		return fmt.Errorf("type %s is not supported, return a struct holding it instead", t)
	}
}

// Name returns the trait name.
func (t *Trait) Name() string { return t.name }

// Functions returns the trait functions in declaration order.
func (t *Trait) Functions() []*rsmodel.Func { return t.funcs }

func (t *Trait) implVar() string { return t.name + "Impl" }

// EmitInterface renders the implementation variable and the Go interface.
func (t *Trait) EmitInterface() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nvar %s %s\n\ntype %s interface {\n", t.implVar(), t.name, t.name)
	for _, fn := range t.funcs {
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = goName(p.Name) + " " + GoType(p.Type)
		}
		fmt.Fprintf(&b, "\t%s(%s)", goName(fn.Name), strings.Join(params, ", "))
		if fn.Ret != nil {
			b.WriteString(" " + GoType(fn.Ret))
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// EmitCallbacks renders one C trampoline per direct-call function with a
// result. The Go export hands the result to the function pointer it got from
// the caller through the trampoline.
func (t *Trait) EmitCallbacks() string {
	var b strings.Builder
	for _, fn := range t.funcs {
		if _, mem := fn.MemCallID(); mem || fn.Ret == nil {
			continue
		}
		ret := cType(fn.Ret)
		fmt.Fprintf(&b, "\nstatic inline void %s(const void *f_ptr, %s resp, const void *slot) {\n", t.callbackName(fn), ret)
		fmt.Fprintf(&b, "  ((void (*)(%s, const void *))f_ptr)(resp, slot);\n}\n", ret)
	}
	return b.String()
}

func (t *Trait) callbackName(fn *rsmodel.Func) string {
	return t.name + "_" + fn.Name + "_cb"
}

// EmitExports renders the cgo exports of direct-call functions and the ring
// handlers of shared-memory functions, plus the ring registration export when
// the trait has any shared-memory function.
func (t *Trait) EmitExports(levels *rsmodel.Levels) string {
	var b strings.Builder
	type memFn struct {
		id      int
		handler string
	}
	var ring []memFn

	for _, fn := range t.funcs {
		if id, ok := fn.MemCallID(); ok {
			h := t.emitRingHandler(&b, fn, levels)
			ring = append(ring, memFn{id: id, handler: h})
			continue
		}
		t.emitDirect(&b, fn, levels)
	}

	if len(ring) > 0 {
		sort.Slice(ring, func(i, j int) bool { return ring[i].id < ring[j].id })
		fmt.Fprintf(&b, "\n//export C%s_init_mem_ffi\nfunc C%s_init_mem_ffi(crr C.QueueMeta, crw C.QueueMeta) {\n", t.name, t.name)
		b.WriteString("\tringsInit(crr, crw, []ringHandler{\n")
		for _, r := range ring {
			fmt.Fprintf(&b, "\t\t%s,\n", r.handler)
		}
		b.WriteString("\t})\n}\n")
	}
	return b.String()
}

func (t *Trait) call(fn *rsmodel.Func) string {
	args := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		args[i] = "_" + goName(p.Name)
	}
	return fmt.Sprintf("%s.%s(%s)", t.implVar(), goName(fn.Name), strings.Join(args, ", "))
}

// result renders the lines turning resp into resp_ref. It reports whether a
// scratch buffer named buffer was allocated.
func result(ret *rsmodel.Type, levels *rsmodel.Levels, indent string) (string, bool) {
	if needsBuffer(ret, levels) {
		return fmt.Sprintf("%sresp_ref, buffer := cvt_ref(cnt%s, ref%s)(&resp)\n", indent, ret.Name, ret.Name), true
	}
	return fmt.Sprintf("%sresp_ref := %s\n", indent, toC("&resp", ret, "nil")), false
}

func (t *Trait) emitDirect(b *strings.Builder, fn *rsmodel.Func, levels *rsmodel.Levels) {
	export := "C" + t.name + "_" + fn.Name
	params := make([]string, 0, len(fn.Params)+2)
	for _, p := range fn.Params {
		params = append(params, paramName(p.Name)+" "+CGoType(p.Type))
	}
	if fn.Ret != nil {
		params = append(params, "slot unsafe.Pointer", "cb unsafe.Pointer")
	}

	fmt.Fprintf(b, "\n//export %s\nfunc %s(%s) {\n", export, export, strings.Join(params, ", "))
	for _, p := range fn.Params {
		fmt.Fprintf(b, "\t_%s := %s\n", goName(p.Name), fromC(paramName(p.Name), p.Type))
	}

	indent := "\t"
	if fn.Async {
		b.WriteString("\tgo func() {\n")
		indent = "\t\t"
	}

	if fn.Ret == nil {
		fmt.Fprintf(b, "%s%s\n", indent, t.call(fn))
		keep := t.implVar()
		if len(fn.Params) > 0 {
			keep = "_" + goName(fn.Params[0].Name)
		}
		fmt.Fprintf(b, "%sruntime.KeepAlive(%s)\n", indent, keep)
	} else {
		fmt.Fprintf(b, "%sresp := %s\n", indent, t.call(fn))
		conv, buffered := result(fn.Ret, levels, indent)
		b.WriteString(conv)
		fmt.Fprintf(b, "%sC.%s(cb, resp_ref, slot)\n", indent, t.callbackName(fn))
		fmt.Fprintf(b, "%sruntime.KeepAlive(resp)\n", indent)
		if buffered {
			fmt.Fprintf(b, "%sruntime.KeepAlive(buffer)\n", indent)
		}
	}

	if fn.Async {
		b.WriteString("\t}()\n")
	}
	b.WriteString("}\n")
}

// emitRingHandler renders the handler for a shared-memory function and
// returns its name. ptr points at an array holding one pointer per argument,
// each addressing the argument's C form.
func (t *Trait) emitRingHandler(b *strings.Builder, fn *rsmodel.Func, levels *rsmodel.Levels) string {
	name := "ringHandle" + t.name + "_" + fn.Name
	fmt.Fprintf(b, "\nfunc %s(ptr unsafe.Pointer, pool *ants.MultiPool, post func(any, []byte, unsafe.Pointer)) {\n", name)
	if len(fn.Params) > 0 {
		fmt.Fprintf(b, "\targs := unsafe.Slice((*unsafe.Pointer)(ptr), %d)\n", len(fn.Params))
	}
	for i, p := range fn.Params {
		arg := fmt.Sprintf("*(*%s)(args[%d])", CGoType(p.Type), i)
		fmt.Fprintf(b, "\t_%s := %s\n", goName(p.Name), fromC(arg, p.Type))
	}

	b.WriteString("\ttask := func() {\n")
	if fn.Ret == nil {
		fmt.Fprintf(b, "\t\t%s\n", t.call(fn))
		b.WriteString("\t\tpost(nil, nil, nil)\n")
	} else {
		fmt.Fprintf(b, "\t\tresp := %s\n", t.call(fn))
		conv, buffered := result(fn.Ret, levels, "\t\t")
		b.WriteString(conv)
		if buffered {
			b.WriteString("\t\tpost(resp, buffer, unsafe.Pointer(&resp_ref))\n")
		} else {
			b.WriteString("\t\tpost(resp, nil, unsafe.Pointer(&resp_ref))\n")
		}
	}
	// A closed or saturated pool still owes the caller a response.
	b.WriteString("\t}\n\tif err := pool.Submit(task); err != nil {\n\t\ttask()\n\t}\n}\n")
	return name
}
