package pipeline

import (
	"github.com/Alia5/rsbridge/internal/codegen/fault"
	"github.com/Alia5/rsbridge/internal/codegen/meta"
	"github.com/Alia5/rsbridge/internal/codegen/rsmodel"
)

// Inspect runs the model-only part of the pipeline for src (load, parse,
// reference conversion in memory, trait extraction and the transport
// decision) and summarizes it. Nothing is written.
func (g *Generator) Inspect(src string, go118 bool) (*meta.Metadata, error) {
	text, err := load(src)
	if err != nil {
		return nil, err
	}
	file, err := g.model.Parse(text)
	if err != nil {
		return nil, fault.Wrap(fault.StageParse, fault.KindParse, err, src)
	}
	mapping, _, err := g.model.ConvertStructsToRef(file)
	if err != nil {
		return nil, fault.Wrap(fault.StageReference, fault.KindConversion, err, "convert structs to reference form")
	}
	traits, err := g.model.ExtractTraits(file)
	if err != nil {
		return nil, fault.Wrap(fault.StageTraits, fault.KindConversion, err, "extract traits")
	}
	levels, err := g.model.StructLevels(file)
	if err != nil {
		return nil, fault.Wrap(fault.StageAssemble, fault.KindConversion, err, "order structs")
	}
	tr := decideTransport(traits)

	md := &meta.Metadata{
		Source:    src,
		Symbols:   mapping.Symbols(),
		Structs:   []meta.StructInfo{},
		Traits:    []meta.TraitInfo{},
		Transport: meta.Transport{SharedMemory: tr.SharedMemory, DirectCall: tr.DirectCall},
		Imports:   Imports(tr, go118),
		Skipped:   file.Skipped,
	}
	for _, s := range levels.Order() {
		sym, _ := mapping.Lookup(s.Name)
		md.Structs = append(md.Structs, meta.StructInfo{
			Name:   s.Name,
			Symbol: sym,
			Level:  levels.Level(s.Name),
			Deep:   levels.Deep(s.Name),
			Fields: fieldInfos(s.Fields),
		})
	}
	for _, t := range file.Traits {
		ti := meta.TraitInfo{Name: t.Name, Functions: []meta.FunctionInfo{}}
		for _, fn := range t.Funcs {
			fi := meta.FunctionInfo{
				Name:      fn.Name,
				Params:    []meta.FieldInfo{},
				Async:     fn.Async,
				Transport: meta.TransportDirect,
				MemCallID: -1,
			}
			for _, p := range fn.Params {
				fi.Params = append(fi.Params, meta.FieldInfo{Name: p.Name, Type: p.Type.String()})
			}
			if fn.Ret != nil {
				fi.Returns = fn.Ret.String()
			}
			if id, ok := fn.MemCallID(); ok {
				fi.Transport = meta.TransportShm
				fi.MemCallID = id
			}
			ti.Functions = append(ti.Functions, fi)
		}
		md.Traits = append(md.Traits, ti)
	}

	g.logger.Debug("Inspected source", "path", src, "structs", len(md.Structs), "traits", len(md.Traits))
	return md, nil
}

func fieldInfos(fields []rsmodel.Field) []meta.FieldInfo {
	out := make([]meta.FieldInfo, 0, len(fields))
	for _, f := range fields {
		out = append(out, meta.FieldInfo{Name: f.Name, Type: f.Type.String()})
	}
	return out
}
