package reflection

import (
	"reflect"
	"sync"

	"assetyaml/primitive"
)

// TypeDescriptor is the cached serialization view of one type.
type TypeDescriptor struct {
	Type      reflect.Type
	Kind      Kind
	Primitive primitive.KindEnum // for KindPrimitive
	Style     DataStyle          // type-level style
	Members   []*Member          // for KindObject, in CompareMembers order
	Container Container          // for KindCollection, KindDictionary and KindArray
	Err       error              // member tags that could not be parsed
}

// Member looks a member up by serialized name, then by alias.
// aliased is true when name matched a former name.
func (d *TypeDescriptor) Member(name string) (member *Member, aliased, ok bool) {
	for _, m := range d.Members {
		if m.Name == name {
			return m, false, true
		}
	}

	for _, m := range d.Members {
		if m.HasAlias(name) {
			return m, true, true
		}
	}

	return nil, false, false
}

// MemberNames returns the serialized member names in order.
func (d *TypeDescriptor) MemberNames() []string {
	names := make([]string, len(d.Members))
	for i, m := range d.Members {
		names[i] = m.Name
	}

	return names
}

// IsContainer reports whether the descriptor has a Container.
func (d *TypeDescriptor) IsContainer() bool {
	return d.Container != nil
}

// Factory builds descriptors and caches one per type.
// It is safe for concurrent use.
type Factory struct {
	cache sync.Map // reflect.Type -> *TypeDescriptor
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Default is the process-wide descriptor factory.
var Default = NewFactory()

// Find returns the descriptor of t, building it on first use.
func (f *Factory) Find(t reflect.Type) *TypeDescriptor {
	if cached, ok := f.cache.Load(t); ok {
		return cached.(*TypeDescriptor)
	}

	desc := build(t)
	actual, _ := f.cache.LoadOrStore(t, desc)

	return actual.(*TypeDescriptor)
}

func build(t reflect.Type) *TypeDescriptor {
	desc := &TypeDescriptor{
		Type:  t,
		Kind:  kindOf(t),
		Style: typeStyle(t),
	}

	switch desc.Kind {
	case KindPrimitive:
		desc.Primitive = primitive.FromReflectType(t)
	case KindObject:
		desc.Members, desc.Err = collectMembers(t)
	case KindCollection, KindDictionary, KindArray:
		desc.Container = containerOf(t)
	}

	return desc
}
