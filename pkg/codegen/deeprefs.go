package codegen

import (
	"github.com/hashicorp/go-set/v2"
)

// DeepRefs returns the transitive closure of names over model imports,
// restricted to the models and enums in defs, sorted by name
func DeepRefs(names []string, defs *Definitions) []string {
	models := make(map[string]*Model, len(defs.Models))
	for _, m := range defs.Models {
		models[m.Name] = m
	}
	enums := set.New[string](len(defs.Enums))
	for _, e := range defs.Enums {
		enums.Insert(e.Name)
	}

	found := set.New[string](len(names))
	queue := append([]string(nil), names...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if found.Contains(name) {
			continue
		}
		if m, ok := models[name]; ok {
			found.Insert(name)
			queue = append(queue, m.Imports...)
			continue
		}
		if enums.Contains(name) {
			found.Insert(name)
		}
	}
	return sortedUnique(found.Slice())
}

// Filter returns the definitions whose names are listed, keeping document order
func (d *Definitions) Filter(names []string) *Definitions {
	keep := set.From[string](names)
	out := &Definitions{}
	for _, m := range d.Models {
		if keep.Contains(m.Name) {
			out.Models = append(out.Models, m)
		}
	}
	for _, e := range d.Enums {
		if keep.Contains(e.Name) {
			out.Enums = append(out.Enums, e)
		}
	}
	return out
}
