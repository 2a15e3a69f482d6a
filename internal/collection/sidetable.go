package collection

import (
	"reflect"
	"runtime"
	"sync"
	"unsafe"
	"weak"
)

// table attaches registries to containers. Keys are weak pointers to the
// container identity, so an entry never keeps its container alive; a cleanup
// registered with the runtime drops the entry once the container is collected.
var table sync.Map // weak.Pointer[byte] -> *Identifiers

// IdsOf returns the registry attached to container, creating and attaching
// an empty one on first access.
//
// container is a map, or a pointer to a slice, an array or a map. Slices and
// arrays are identified by the address of the variable holding them, maps by
// the map itself. IdsOf panics for any other argument.
func IdsOf(container any) *Identifiers {
	p, ok := identityOf(reflect.ValueOf(container))
	if !ok {
		panic("collection: IdsOf requires a non-nil map or a pointer to a slice, array or map")
	}

	return attach(p)
}

// TryIdsOf returns the registry attached to container, if any.
func TryIdsOf(container any) (*Identifiers, bool) {
	p, ok := identityOf(reflect.ValueOf(container))
	if !ok {
		return nil, false
	}

	return lookup(p)
}

// IdsOfValue is the reflect counterpart of IdsOf. v is a map value, or an
// addressable slice or array value. It reports false when v has no identity
// registries can be attached to.
func IdsOfValue(v reflect.Value) (*Identifiers, bool) {
	p, ok := identityOfValue(v)
	if !ok {
		return nil, false
	}

	return attach(p), true
}

// TryIdsOfValue returns the registry already attached to v, if any.
func TryIdsOfValue(v reflect.Value) (*Identifiers, bool) {
	p, ok := identityOfValue(v)
	if !ok {
		return nil, false
	}

	return lookup(p)
}

func identityOf(v reflect.Value) (unsafe.Pointer, bool) {
	switch v.Kind() {
	case reflect.Map:
		return identityOfValue(v)
	case reflect.Pointer:
		if v.IsNil() {
			return nil, false
		}

		return identityOfValue(v.Elem())
	default:
		return nil, false
	}
}

func identityOfValue(v reflect.Value) (unsafe.Pointer, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return nil, false
		}

		return v.UnsafePointer(), true
	case reflect.Slice, reflect.Array:
		if !v.CanAddr() || v.Type().Size() == 0 {
			return nil, false
		}

		return v.Addr().UnsafePointer(), true
	default:
		return nil, false
	}
}

func lookup(p unsafe.Pointer) (*Identifiers, bool) {
	ids, ok := table.Load(weak.Make((*byte)(p)))
	if !ok {
		return nil, false
	}

	return ids.(*Identifiers), true
}

func attach(p unsafe.Pointer) *Identifiers {
	key := weak.Make((*byte)(p))
	if ids, ok := table.Load(key); ok {
		return ids.(*Identifiers)
	}

	fresh := NewIdentifiers()

	actual, loaded := table.LoadOrStore(key, fresh)
	if !loaded {
		runtime.AddCleanup((*byte)(p), func(k weak.Pointer[byte]) {
			table.CompareAndDelete(k, fresh)
		}, key)
	}

	return actual.(*Identifiers)
}
