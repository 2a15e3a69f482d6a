package collection

import (
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// entryTables holds the registries of slices and arrays stored inline in map
// values. Such a container has no address of its own, so its registry hangs
// off the map, keyed by the map key and the path from the value to the
// container.
var entryTables sync.Map // weak.Pointer[byte] -> *entryTable

type entryKey struct {
	key  any
	path string
}

type entryTable struct {
	mu  sync.Mutex
	ids map[entryKey]*Identifiers
}

// IdsOfEntry returns the registry of the slice or array stored under key in
// the map m, creating it on first access. IdsOfEntry panics when m is not a
// non-nil map.
func IdsOfEntry(m, key any) *Identifiers {
	ids, ok := EntryIdsOfValue(reflect.ValueOf(m), key, "")
	if !ok {
		panic("collection: IdsOfEntry requires a non-nil map")
	}

	return ids
}

// EntryIdsOfValue returns the registry of the container found at path inside
// the value stored under key in m, creating it on first access. path is empty
// for the value itself. It reports false when m is not a non-nil map.
func EntryIdsOfValue(m reflect.Value, key any, path string) (*Identifiers, bool) {
	et, ok := entryTableOf(m, true)
	if !ok {
		return nil, false
	}

	et.mu.Lock()
	defer et.mu.Unlock()

	k := entryKey{key: key, path: path}

	ids, ok := et.ids[k]
	if !ok {
		ids = NewIdentifiers()
		et.ids[k] = ids
	}

	return ids, true
}

// TryEntryIdsOfValue returns the entry registry already attached for path
// inside the value stored under key in m, if any.
func TryEntryIdsOfValue(m reflect.Value, key any, path string) (*Identifiers, bool) {
	et, ok := entryTableOf(m, false)
	if !ok {
		return nil, false
	}

	et.mu.Lock()
	defer et.mu.Unlock()

	ids, ok := et.ids[entryKey{key: key, path: path}]

	return ids, ok
}

// PruneEntries drops the entry registries of m whose map key fails keep.
func PruneEntries(m reflect.Value, keep func(key any) bool) {
	et, ok := entryTableOf(m, false)
	if !ok {
		return
	}

	et.mu.Lock()
	defer et.mu.Unlock()

	for k := range et.ids {
		if !keep(k.key) {
			delete(et.ids, k)
		}
	}
}

func entryTableOf(m reflect.Value, create bool) (*entryTable, bool) {
	if m.Kind() != reflect.Map || m.IsNil() {
		return nil, false
	}

	p := (*byte)(m.UnsafePointer())
	key := weak.Make(p)

	if et, ok := entryTables.Load(key); ok {
		return et.(*entryTable), true
	}

	if !create {
		return nil, false
	}

	fresh := &entryTable{ids: make(map[entryKey]*Identifiers)}

	actual, loaded := entryTables.LoadOrStore(key, fresh)
	if !loaded {
		runtime.AddCleanup(p, func(k weak.Pointer[byte]) {
			entryTables.CompareAndDelete(k, fresh)
		}, key)
	}

	return actual.(*entryTable), true
}
