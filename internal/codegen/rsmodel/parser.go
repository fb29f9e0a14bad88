package rsmodel

import (
	"fmt"
	"strings"
	"text/scanner"
)

// MemAttr marks a trait function as served over the shared-memory ring.
const MemAttr = "mem"

type parser struct {
	toks []token
	pos  int
}

// Parse parses src into a File. Items outside the supported subset (impl
// blocks, enums, free functions, ...) are skipped and listed in File.Skipped.
func Parse(src string) (*File, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseFile()
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.tok != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Line: t.line, Column: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(text string) (token, error) {
	t := p.next()
	if !t.is(text) {
		return t, p.errorf(t, "expected %q, found %s", text, t.describe())
	}
	return t, nil
}

func (p *parser) accept(text string) bool {
	if p.peek().is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) ident() (token, error) {
	t := p.next()
	if t.tok != scanner.Ident {
		return t, p.errorf(t, "expected identifier, found %s", t.describe())
	}
	return t, nil
}

func (p *parser) parseFile() (*File, error) {
	f := &File{}
	for p.peek().tok != scanner.EOF {
		attrs, err := p.parseAttrs()
		if err != nil {
			return nil, err
		}
		if p.peek().tok == scanner.EOF {
			break
		}
		start := p.peek()
		p.skipVisibility()

		kw := p.peek()
		switch {
		case kw.is("struct"):
			s, err := p.parseStruct(attrs)
			if err != nil {
				return nil, err
			}
			s.Line = start.line
			f.Structs = append(f.Structs, s)
		case kw.is("trait"):
			t, err := p.parseTrait(attrs)
			if err != nil {
				return nil, err
			}
			t.Line = start.line
			f.Traits = append(f.Traits, t)
		case kw.is("use"):
			if err := p.skipItem(); err != nil {
				return nil, err
			}
		case kw.tok == scanner.Ident:
			name := kw.text
			if next := p.peekAt(1); next.tok == scanner.Ident {
				name += " " + next.text
			}
			if err := p.skipItem(); err != nil {
				return nil, err
			}
			f.Skipped = append(f.Skipped, name)
		default:
			return nil, p.errorf(kw, "expected item, found %s", kw.describe())
		}
	}
	return f, nil
}

// parseAttrs consumes outer (#[..]) and inner (#![..]) attributes. Inner
// attributes are dropped.
func (p *parser) parseAttrs() ([]Attr, error) {
	var attrs []Attr
	for p.peek().is("#") {
		p.next()
		inner := p.accept("!")
		if _, err := p.expect("["); err != nil {
			return nil, err
		}
		name, err := p.path()
		if err != nil {
			return nil, err
		}
		var args []string
		depth := 0
		for {
			t := p.next()
			if t.tok == scanner.EOF {
				return nil, p.errorf(t, "unterminated attribute")
			}
			if t.is("[") || t.is("(") {
				depth++
			}
			if t.is("]") || t.is(")") {
				if depth == 0 && t.is("]") {
					break
				}
				depth--
			}
			args = append(args, t.text)
		}
		if inner {
			continue
		}
		a := strings.Join(args, "")
		a = strings.TrimSuffix(strings.TrimPrefix(a, "("), ")")
		attrs = append(attrs, Attr{Name: name, Args: a})
	}
	return attrs, nil
}

func (p *parser) skipVisibility() {
	if !p.peek().is("pub") {
		return
	}
	p.next()
	if p.peek().is("(") {
		for t := p.next(); t.tok != scanner.EOF && !t.is(")"); t = p.next() {
		}
	}
}

// skipItem skips tokens up to a ';' or a balanced '{ ... }' at depth zero.
func (p *parser) skipItem() error {
	depth := 0
	for {
		t := p.next()
		switch {
		case t.tok == scanner.EOF:
			return p.errorf(t, "unexpected end of file")
		case t.is("{"):
			depth++
		case t.is("}"):
			depth--
			if depth == 0 {
				return nil
			}
		case t.is(";") && depth == 0:
			return nil
		}
	}
}

func (p *parser) path() (string, error) {
	t, err := p.ident()
	if err != nil {
		return "", err
	}
	name := t.text
	for p.peek().is(":") && p.peekAt(1).is(":") {
		p.next()
		p.next()
		seg, err := p.ident()
		if err != nil {
			return "", err
		}
		name += "::" + seg.text
	}
	return name, nil
}

func (p *parser) parseStruct(attrs []Attr) (*Struct, error) {
	p.next() // struct
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if p.peek().is("<") {
		return nil, p.errorf(p.peek(), "generic struct %s is not supported", name.text)
	}
	if !p.peek().is("{") {
		return nil, p.errorf(p.peek(), "struct %s: only structs with named fields are supported", name.text)
	}
	p.next()

	s := &Struct{Name: name.text, Attrs: attrs}
	for !p.peek().is("}") {
		if _, err := p.parseAttrs(); err != nil {
			return nil, err
		}
		p.skipVisibility()
		fname, err := p.ident()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, Field{Name: fname.text, Type: typ})
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) parseTrait(attrs []Attr) (*Trait, error) {
	p.next() // trait
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}

	t := &Trait{Name: name.text, Attrs: attrs}
	memID := 0
	for !p.peek().is("}") {
		fattrs, err := p.parseAttrs()
		if err != nil {
			return nil, err
		}
		fn, err := p.parseFunc(fattrs)
		if err != nil {
			return nil, err
		}
		if HasAttr(fattrs, MemAttr) {
			fn.mem = true
			fn.memCallID = memID
			memID++
		}
		t.Funcs = append(t.Funcs, fn)
	}
	p.next()
	return t, nil
}

func (p *parser) parseFunc(attrs []Attr) (*Func, error) {
	async := p.accept("async")
	if _, err := p.expect("fn"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	fn := &Func{Name: name.text, Attrs: attrs, Async: async}

	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	p.skipReceiver()
	for !p.peek().is(")") {
		p.accept("mut")
		pname, err := p.ident()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, Param{Name: pname.text, Type: typ})
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	if p.peek().is("-") && p.peekAt(1).is(">") {
		p.next()
		p.next()
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		switch {
		case ret.Kind == KindFuture:
			fn.Async = true
			fn.Ret = ret.Elem
		case ret.Kind != KindUnit:
			fn.Ret = ret
		}
		if fn.Ret != nil && fn.Ret.Kind == KindUnit {
			fn.Ret = nil
		}
	}

	switch {
	case p.accept(";"):
	case p.peek().is("{"):
		if err := p.skipItem(); err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf(p.peek(), "fn %s: expected ';' or body, found %s", fn.Name, p.peek().describe())
	}
	return fn, nil
}

// skipReceiver drops self, &self, &mut self and mut self.
func (p *parser) skipReceiver() {
	n := 0
	if p.peekAt(n).is("&") {
		n++
	}
	if p.peekAt(n).is("mut") {
		n++
	}
	if !p.peekAt(n).is("self") {
		return
	}
	p.pos += n + 1
	p.accept(",")
}

func (p *parser) parseType() (*Type, error) {
	t := p.peek()
	switch {
	case t.is("&"):
		p.next()
		p.accept("mut")
		return p.parseType()
	case t.is("*"):
		p.next()
		mut := false
		switch {
		case p.accept("const"):
		case p.accept("mut"):
			mut = true
		default:
			return nil, p.errorf(p.peek(), "expected const or mut after '*', found %s", p.peek().describe())
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindPointer, Elem: elem, Mut: mut}, nil
	case t.is("("):
		p.next()
		if _, err := p.expect(")"); err != nil {
			return nil, p.errorf(t, "tuple types are not supported")
		}
		return &Type{Kind: KindUnit}, nil
	case t.is("impl"):
		p.next()
		return p.parseFuture(t)
	}

	name, err := p.path()
	if err != nil {
		return nil, err
	}
	var args []*Type
	if p.accept("<") {
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.accept(",") {
				break
			}
		}
		if _, err := p.expect(">"); err != nil {
			return nil, err
		}
	}

	base := lastSegment(name)
	switch {
	case IsScalar(base) && len(args) == 0:
		return &Type{Kind: KindScalar, Name: base}, nil
	case base == "String" && len(args) == 0:
		return &Type{Kind: KindString}, nil
	case base == "Vec":
		if len(args) != 1 {
			return nil, p.errorf(t, "Vec takes exactly one type argument")
		}
		return &Type{Kind: KindList, Elem: args[0]}, nil
	case len(args) > 0:
		return nil, p.errorf(t, "generic type %s is not supported", name)
	default:
		return &Type{Kind: KindStruct, Name: base}, nil
	}
}

// parseFuture parses the rest of `impl [path::]Future<Output = T>`.
func (p *parser) parseFuture(start token) (*Type, error) {
	name, err := p.path()
	if err != nil {
		return nil, err
	}
	if lastSegment(name) != "Future" {
		return nil, p.errorf(start, "impl %s is not supported, only impl Future<Output = T>", name)
	}
	if _, err := p.expect("<"); err != nil {
		return nil, err
	}
	if _, err := p.expect("Output"); err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	out, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(">"); err != nil {
		return nil, err
	}
	return &Type{Kind: KindFuture, Elem: out}, nil
}
