// Package cheader turns a reference document into C declarations.
package cheader

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

const headerTmpl = `{{.Banner}}

#include <stdarg.h>
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
{{range .Structs}}
typedef struct {{.Name}} {
{{- range .Fields}}
  {{fieldDecl .}};
{{- end}}
} {{.Name}};
{{end}}`

var tpl = template.Must(template.New("header").Funcs(template.FuncMap{
	"fieldDecl": fieldDecl,
}).Parse(headerTmpl))

// Bridge synthesizes C headers from reference documents on disk.
type Bridge struct{}

// Synthesize reads the reference document at path and renders a C typedef for
// every struct named in whitelist, dependencies first, after banner.
//
// Every whitelisted symbol must be declared in the document, and a kept struct
// may only refer to other whitelisted structs.
func (Bridge) Synthesize(path string, whitelist []string, banner string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference document: %w", err)
	}
	doc, err := rsmodel.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse reference document %s: %w", path, err)
	}

	kept, err := selectStructs(doc, whitelist)
	if err != nil {
		return nil, err
	}
	levels, err := kept.StructLevels()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, struct {
		Banner  string
		Structs []*rsmodel.Struct
	}{
		Banner:  strings.TrimRight(banner, "\n"),
		Structs: levels.Order(),
	}); err != nil {
		return nil, fmt.Errorf("render header: %w", err)
	}
	return buf.Bytes(), nil
}

// selectStructs keeps the whitelisted structs of doc, in document order.
func selectStructs(doc *rsmodel.File, whitelist []string) (*rsmodel.File, error) {
	allowed := make(map[string]bool, len(whitelist))
	for _, name := range whitelist {
		if doc.Struct(name) == nil {
			return nil, fmt.Errorf("whitelisted symbol %s is not declared in the reference document", name)
		}
		allowed[name] = true
	}

	kept := &rsmodel.File{}
	for _, s := range doc.Structs {
		if !allowed[s.Name] {
			continue
		}
		for _, f := range s.Fields {
			if name, ok := structRef(f.Type); ok && !allowed[name] {
				return nil, fmt.Errorf("%s.%s refers to %s, which is not whitelisted", s.Name, f.Name, name)
			}
		}
		kept.Structs = append(kept.Structs, s)
	}
	return kept, nil
}

func structRef(t *rsmodel.Type) (string, bool) {
	for t.Kind == rsmodel.KindPointer || t.Kind == rsmodel.KindList {
		t = t.Elem
	}
	if t.Kind == rsmodel.KindStruct {
		return t.Name, true
	}
	return "", false
}
