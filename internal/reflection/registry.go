package reflection

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type tagEntry struct {
	t     reflect.Type
	alias bool
}

// TypeRegistry maps YAML tags to Go types. Tags are stored with their
// leading "!". It is safe for concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	byTag map[string]tagEntry
	tagOf map[reflect.Type]string
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byTag: make(map[string]tagEntry),
		tagOf: make(map[reflect.Type]string),
	}
}

func normalizeTag(tag string) string {
	if strings.HasPrefix(tag, "!") {
		return tag
	}

	return "!" + tag
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// Register binds tag to t. aliases are former tags that still resolve to t.
// Pointer types register their element type.
func (r *TypeRegistry) Register(tag string, t reflect.Type, aliases ...string) error {
	if tag == "" || tag == "!" {
		return fmt.Errorf("empty tag for %s", t)
	}

	t = baseType(t)
	tag = normalizeTag(tag)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tagOf[t]; ok && existing != tag {
		return fmt.Errorf("%s is already registered as %s", t, existing)
	}

	names := append([]string{tag}, aliases...)
	for i, name := range names {
		name = normalizeTag(name)
		if e, ok := r.byTag[name]; ok && e.t != t {
			return fmt.Errorf("tag %s is already registered for %s", name, e.t)
		}

		names[i] = name
	}

	r.tagOf[t] = tag
	for i, name := range names {
		r.byTag[name] = tagEntry{t: t, alias: i > 0}
	}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *TypeRegistry) MustRegister(tag string, t reflect.Type, aliases ...string) {
	if err := r.Register(tag, t, aliases...); err != nil {
		panic(err)
	}
}

// TypeOf resolves a node tag. aliased is true when tag is a former tag.
func (r *TypeRegistry) TypeOf(tag string) (t reflect.Type, aliased, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byTag[normalizeTag(tag)]

	return e.t, e.alias, ok
}

// TagOf returns the tag registered for t or its pointer element type.
func (r *TypeRegistry) TagOf(t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, ok := r.tagOf[baseType(t)]

	return tag, ok
}
