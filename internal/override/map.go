package override

import (
	"maps"
	"slices"
	"strings"

	"assetyaml/internal/yamlpath"
)

type entry struct {
	path yamlpath.Path
	t    Type
}

// Map associates paths of a derived asset with their override type.
// The zero value is not usable; call NewMap.
type Map struct {
	entries map[string]entry
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]entry)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Set records t for path. Setting Base removes the entry.
func (m *Map) Set(path yamlpath.Path, t Type) {
	if t == Base {
		m.Delete(path)
		return
	}

	m.entries[path.Key()] = entry{path: path.Clone(), t: t}
}

// Get returns the override type of path. Paths with no entry are Base.
func (m *Map) Get(path yamlpath.Path) (Type, bool) {
	e, ok := m.entries[path.Key()]
	return e.t, ok
}

// Delete removes the entry of path.
func (m *Map) Delete(path yamlpath.Path) {
	delete(m.entries, path.Key())
}

// Paths returns the recorded paths ordered by their textual form.
func (m *Map) Paths() []yamlpath.Path {
	keys := slices.Sorted(maps.Keys(m.entries))

	paths := make([]yamlpath.Path, 0, len(keys))
	for _, key := range keys {
		paths = append(paths, m.entries[key].path)
	}

	slices.SortStableFunc(paths, func(a, b yamlpath.Path) int {
		return strings.Compare(a.String(), b.String())
	})

	return paths
}

// SubMap returns the entries located under prefix, re-rooted so that their
// paths are relative to prefix.
func (m *Map) SubMap(prefix yamlpath.Path) *Map {
	sub := NewMap()

	for _, e := range m.entries {
		if !e.path.HasPrefix(prefix) || e.path.Len() == prefix.Len() {
			continue
		}

		p := e.path.Clone()
		for range prefix.Len() {
			p.RemoveFirstItem()
		}

		sub.entries[p.Key()] = entry{path: p, t: e.t}
	}

	return sub
}

// Merge copies every entry of other into m, prefixed by at.
func (m *Map) Merge(at yamlpath.Path, other *Map) {
	if other == nil {
		return
	}

	for _, e := range other.entries {
		p := at.Append(e.path)
		m.entries[p.Key()] = entry{path: p, t: e.t}
	}
}
