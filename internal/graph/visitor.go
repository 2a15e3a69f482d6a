package graph

import (
	"errors"
	"reflect"
	"unsafe"

	"assetyaml/internal/collection"
	"assetyaml/internal/reflection"
	"assetyaml/internal/yamlpath"
)

// SkipChildren may be returned by a VisitFunc to leave the children of the
// current node unvisited. Visit itself never returns it.
var SkipChildren = errors.New("graph: skip children")

// Edge describes how the visitor reached a node.
type Edge struct {
	// Path is the path of the target from the root.
	Path yamlpath.Path
	// Parent is the object or container holding the target. It is invalid
	// for the root.
	Parent reflect.Value
	// Member is set when the target is a member of an object.
	Member *reflection.Member
	// Key is the position or map key of the target when it is an element.
	Key reflect.Value
	// Style is the member style the target is written with.
	Style reflection.DataStyle

	entry *entryRef
}

// entryRef is the map entry whose value holds the target inline.
type entryRef struct {
	m     reflect.Value
	key   any
	depth int
}

// Identifiers returns the registry of the container v reached through e,
// attaching an empty one when create is set. Slices and arrays stored inline
// in a map value take their registry from the map entry.
func (e Edge) Identifiers(v reflect.Value, create bool) (*collection.Identifiers, bool) {
	if e.entry != nil && v.Kind() != reflect.Map {
		rel := yamlpath.New(e.Path.Items()[e.entry.depth:]...)
		if create {
			return collection.EntryIdsOfValue(e.entry.m, e.entry.key, rel.Key())
		}

		return collection.TryEntryIdsOfValue(e.entry.m, e.entry.key, rel.Key())
	}

	if create {
		return collection.IdsOfValue(v)
	}

	return collection.TryIdsOfValue(v)
}

// IsRoot reports whether e leads to the root.
func (e Edge) IsRoot() bool {
	return !e.Parent.IsValid()
}

// VisitFunc is called once per node. v has pointers and interfaces
// resolved; it is never a nil pointer.
type VisitFunc func(edge Edge, v reflect.Value) error

// NodeFilter decides which edges the visitor follows.
type NodeFilter interface {
	// ShouldVisitNode is called before descending from edge.Parent into
	// target. target is the value as stored, pointers unresolved.
	ShouldVisitNode(edge Edge, target reflect.Value) bool
}

// NodeFilterFunc adapts a function to NodeFilter.
type NodeFilterFunc func(edge Edge, target reflect.Value) bool

// ShouldVisitNode calls f.
func (f NodeFilterFunc) ShouldVisitNode(edge Edge, target reflect.Value) bool { return f(edge, target) }

// Visitor walks an object graph depth first: members in descriptor order,
// then elements in container order. Items with an id in their container's
// registry are addressed by id, others by position or key.
//
// A pointer or map reached a second time is not entered again, so shared
// values are visited once and cycles terminate.
type Visitor struct {
	// Filter is consulted for every edge. Nil follows every edge.
	Filter NodeFilter
	// Descriptors is the descriptor cache. Nil means reflection.Default.
	Descriptors *reflection.Factory
}

// Visit walks the graph rooted at root. root should be a pointer so that
// slices below it are addressable and keep their registries.
func (vis *Visitor) Visit(root any, fn VisitFunc) error {
	if root == nil {
		return nil
	}

	return vis.VisitValue(reflect.ValueOf(root), fn)
}

// VisitValue is Visit for a reflect.Value.
func (vis *Visitor) VisitValue(root reflect.Value, fn VisitFunc) error {
	descs := vis.Descriptors
	if descs == nil {
		descs = reflection.Default
	}

	w := &walker{
		filter: vis.Filter,
		descs:  descs,
		fn:     fn,
		seen:   make(map[visitKey]struct{}),
	}

	return w.walk(Edge{Path: yamlpath.New()}, root)
}

type visitKey struct {
	p unsafe.Pointer
	t reflect.Type
}

type walker struct {
	filter NodeFilter
	descs  *reflection.Factory
	fn     VisitFunc
	seen   map[visitKey]struct{}
}

func (w *walker) walk(edge Edge, v reflect.Value) error {
	v, indirect, ok := w.resolve(v)
	if !ok {
		return nil
	}

	if indirect {
		edge.entry = nil
	}

	if err := w.fn(edge, v); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}

		return err
	}

	desc := w.descs.Find(v.Type())

	switch desc.Kind {
	case reflection.KindObject:
		for _, m := range desc.Members {
			child := Edge{
				Path:   edge.Path.With(yamlpath.Member(m.Name)),
				Parent: v,
				Member: m,
				Style:  m.Style,
				entry:  edge.entry,
			}

			if err := w.follow(child, m.Get(v)); err != nil {
				return err
			}
		}
	case reflection.KindCollection, reflection.KindDictionary, reflection.KindArray:
		ids, _ := edge.Identifiers(v, false)

		return desc.Container.Enumerate(v, func(key, elem reflect.Value) error {
			item := yamlpath.Index(key.Interface())
			if ids != nil {
				if id, ok := ids.Get(key.Interface()); ok {
					item = yamlpath.ItemID(id)
				}
			}

			child := Edge{Path: edge.Path.With(item), Parent: v, Key: key}

			// Slice elements live in the backing array; array elements and
			// map values are stored inline.
			switch desc.Kind {
			case reflection.KindDictionary:
				child.entry = &entryRef{m: v, key: key.Interface(), depth: child.Path.Len()}
			case reflection.KindArray:
				child.entry = edge.entry
			}

			return w.follow(child, elem)
		})
	}

	return nil
}

func (w *walker) follow(edge Edge, target reflect.Value) error {
	if w.filter != nil && !w.filter.ShouldVisitNode(edge, target) {
		return nil
	}

	return w.walk(edge, target)
}

// resolve strips pointers and interfaces and reports whether a pointer was
// followed. It reports false for nil values and for pointers and maps
// already entered.
func (w *walker) resolve(v reflect.Value) (reflect.Value, bool, bool) {
	indirect := false

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, indirect, false
		}

		if v.Kind() == reflect.Pointer {
			if !w.enter(v) {
				return v, indirect, false
			}

			indirect = true
		}

		v = v.Elem()
	}

	if v.Kind() == reflect.Map && !v.IsNil() && !w.enter(v) {
		return v, indirect, false
	}

	return v, indirect, v.IsValid()
}

func (w *walker) enter(v reflect.Value) bool {
	key := visitKey{p: v.UnsafePointer(), t: v.Type()}
	if _, ok := w.seen[key]; ok {
		return false
	}

	w.seen[key] = struct{}{}

	return true
}
