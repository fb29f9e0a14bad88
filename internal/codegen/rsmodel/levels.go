package rsmodel

import "sort"

// Levels is the dependency ordering of a file's structs. A struct with no
// struct-typed fields sits at level 0; any other struct sits one level above
// its deepest dependency.
type Levels struct {
	order []*Struct
	level map[string]int
	deep  map[string]bool
}

// Order returns the structs sorted by level, then by declaration order.
func (l *Levels) Order() []*Struct { return l.order }

// Level returns the level of struct name, or -1 if it is unknown.
func (l *Levels) Level(name string) int {
	if lv, ok := l.level[name]; ok {
		return lv
	}
	return -1
}

// Deep reports whether struct name holds a Vec of strings or structs,
// directly or through a nested struct. Such values need a scratch buffer when
// converted to their C form; lists of scalars are copied without one.
func (l *Levels) Deep(name string) bool { return l.deep[name] }

// StructLevels computes the level ordering. Cycles between structs and
// references to undeclared structs are conversion errors.
func (f *File) StructLevels() (*Levels, error) {
	l := &Levels{
		level: make(map[string]int, len(f.Structs)),
		deep:  make(map[string]bool, len(f.Structs)),
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(f.Structs))

	var visit func(s *Struct, path []string) error
	visit = func(s *Struct, path []string) error {
		switch state[s.Name] {
		case done:
			return nil
		case visiting:
			return conversionErrorf(s.Name, "struct cycle %s", cyclePath(path, s.Name))
		}
		state[s.Name] = visiting
		path = append(path, s.Name)

		lv, deep := 0, false
		for _, fl := range s.Fields {
			t := fl.Type
			if t.Kind == KindList {
				t = t.Elem
				if t.Kind != KindScalar {
					deep = true
				}
			}
			if t.Kind != KindStruct {
				continue
			}
			dep := f.Struct(t.Name)
			if dep == nil {
				return conversionErrorf(s.Name+"."+fl.Name, "unknown type %s", t.Name)
			}
			if err := visit(dep, path); err != nil {
				return err
			}
			lv = max(lv, l.level[dep.Name]+1)
			deep = deep || l.deep[dep.Name]
		}

		l.level[s.Name] = lv
		l.deep[s.Name] = deep
		state[s.Name] = done
		return nil
	}

	for _, s := range f.Structs {
		if err := visit(s, nil); err != nil {
			return nil, err
		}
	}

	l.order = append([]*Struct(nil), f.Structs...)
	sort.SliceStable(l.order, func(i, j int) bool {
		return l.level[l.order[i].Name] < l.level[l.order[j].Name]
	})
	return l, nil
}

func cyclePath(path []string, back string) string {
	start := 0
	for i, n := range path {
		if n == back {
			start = i
			break
		}
	}
	out := ""
	for _, n := range path[start:] {
		out += n + " -> "
	}
	return out + back
}
