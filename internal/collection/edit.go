package collection

import (
	"reflect"
	"slices"

	"assetyaml/internal/itemid"
)

// The functions below edit a collection and its attached registry together.
// Raw assignments to a slice or map bypass them; such containers get their
// registry rebuilt the next time they are deserialized.

// Append adds item at the end of *s and gives it a fresh id.
func Append[S ~[]E, E any](s *S, item E) itemid.ID {
	return Insert(s, len(*s), item)
}

// Insert inserts item at index and gives it a fresh id.
func Insert[S ~[]E, E any](s *S, index int, item E) itemid.ID {
	id := itemid.New()
	InsertWithID(s, index, item, id)

	return id
}

// InsertWithID inserts item at index with the given id. Registry positions at
// or after index move up by one.
func InsertWithID[S ~[]E, E any](s *S, index int, item E, id itemid.ID) {
	*s = slices.Insert(*s, index, item)
	IdsOf(s).Insert(index, id)
}

// RemoveAt removes the item at index and returns it with its id. When
// markDeleted is true the id is kept as a tombstone, so a derived asset
// records that the item was removed on purpose.
func RemoveAt[S ~[]E, E any](s *S, index int, markDeleted bool) (E, itemid.ID) {
	item := (*s)[index]
	*s = slices.Delete(*s, index, index+1)

	ids := IdsOf(s)
	id, ok := ids.DeleteAndShift(index)

	if ok && markDeleted {
		ids.MarkAsDeleted(id)
	}

	return item, id
}

// Move moves the item at from to position to. The item keeps its id.
func Move[S ~[]E, E any](s *S, from, to int) {
	if from == to {
		return
	}

	item := (*s)[from]
	*s = slices.Delete(*s, from, from+1)
	*s = slices.Insert(*s, to, item)

	ids := IdsOf(s)

	id, ok := ids.DeleteAndShift(from)
	if !ok {
		id = itemid.New()
	}

	ids.Insert(to, id)
}

// SetAt replaces the item at index. The position keeps its id.
func SetAt[S ~[]E, E any](s *S, index int, item E) itemid.ID {
	(*s)[index] = item

	ids := IdsOf(s)

	id, ok := ids.Get(index)
	if !ok {
		id = itemid.New()
		ids.Set(index, id)
	}

	return id
}

// MapSet stores value under key. An existing key keeps its id, a new key
// gets a fresh one.
func MapSet[M ~map[K]V, K comparable, V any](m M, key K, value V) itemid.ID {
	m[key] = value

	ids := IdsOf(m)

	id, ok := ids.Get(key)
	if !ok {
		id = itemid.New()
		ids.Set(key, id)
	}

	return id
}

// MapDelete deletes key from m. When markDeleted is true the id of the entry
// is kept as a tombstone.
func MapDelete[M ~map[K]V, K comparable, V any](m M, key K, markDeleted bool) (itemid.ID, bool) {
	if _, ok := m[key]; !ok {
		return itemid.Empty, false
	}

	delete(m, key)
	PruneEntries(reflect.ValueOf(m), func(k any) bool { return k != any(key) })

	ids := IdsOf(m)
	id, ok := ids.Remove(key)

	if ok && markDeleted {
		ids.MarkAsDeleted(id)
	}

	return id, ok
}
