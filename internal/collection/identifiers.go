package collection

import (
	"cmp"
	"fmt"
	"slices"

	"cogentcore.org/core/base/keylist"

	"assetyaml/internal/itemid"
)

// Identifiers maps the keys of one collection or dictionary to item ids.
// Sequence keys are int positions; dictionary keys are the map keys.
// It also holds the ids of items deleted in a derived asset, so that a merge
// with the base asset does not bring them back.
//
// Identifiers is not safe for concurrent mutation.
type Identifiers struct {
	keyToID map[any]itemid.ID
	deleted keylist.List[itemid.ID, struct{}]
}

// NewIdentifiers creates an empty registry that is not attached to any container.
func NewIdentifiers() *Identifiers {
	return &Identifiers{keyToID: make(map[any]itemid.ID)}
}

// Len returns the number of live entries.
func (ids *Identifiers) Len() int {
	return len(ids.keyToID)
}

// Get returns the id recorded for key.
func (ids *Identifiers) Get(key any) (itemid.ID, bool) {
	id, ok := ids.keyToID[key]
	return id, ok
}

// Add records id for key. It fails if key already has an id.
func (ids *Identifiers) Add(key any, id itemid.ID) error {
	if existing, ok := ids.keyToID[key]; ok {
		return fmt.Errorf("collection: key %v already has id %s", key, existing)
	}

	ids.Set(key, id)

	return nil
}

// Set records id for key, replacing any previous id.
// A live id is never kept in the deleted set.
func (ids *Identifiers) Set(key any, id itemid.ID) {
	ids.keyToID[key] = id
	ids.deleted.DeleteByKey(id)
}

// Remove drops the entry for key without shifting other keys.
func (ids *Identifiers) Remove(key any) (itemid.ID, bool) {
	id, ok := ids.keyToID[key]
	if ok {
		delete(ids.keyToID, key)
	}

	return id, ok
}

// Insert records id at position index of a sequence, shifting every
// position at or after index up by one.
func (ids *Identifiers) Insert(index int, id itemid.ID) {
	shifted := make(map[any]itemid.ID, len(ids.keyToID)+1)

	for key, existing := range ids.keyToID {
		if pos, ok := key.(int); ok && pos >= index {
			shifted[pos+1] = existing
			continue
		}

		shifted[key] = existing
	}

	ids.keyToID = shifted
	ids.Set(index, id)
}

// DeleteAndShift removes position index of a sequence and shifts every later
// position down by one. It returns the id that was at index, if any.
func (ids *Identifiers) DeleteAndShift(index int) (itemid.ID, bool) {
	id, ok := ids.keyToID[index]
	shifted := make(map[any]itemid.ID, len(ids.keyToID))

	for key, existing := range ids.keyToID {
		pos, isPos := key.(int)

		switch {
		case !isPos:
			shifted[key] = existing
		case pos < index:
			shifted[pos] = existing
		case pos > index:
			shifted[pos-1] = existing
		}
	}

	ids.keyToID = shifted

	return id, ok
}

// MarkAsDeleted records id as deleted. Ids that are still live are refused.
func (ids *Identifiers) MarkAsDeleted(id itemid.ID) bool {
	if ids.ContainsID(id) {
		return false
	}

	ids.deleted.Set(id, struct{}{})

	return true
}

// UnmarkAsDeleted forgets that id was deleted.
func (ids *Identifiers) UnmarkAsDeleted(id itemid.ID) {
	ids.deleted.DeleteByKey(id)
}

// IsDeleted reports whether id is in the deleted set.
func (ids *Identifiers) IsDeleted(id itemid.ID) bool {
	return ids.deleted.IndexByKey(id) >= 0
}

// DeletedItems returns the deleted ids in the order they were marked.
func (ids *Identifiers) DeletedItems() []itemid.ID {
	return slices.Clone(ids.deleted.Keys)
}

// ContainsID reports whether id is the id of a live entry.
func (ids *Identifiers) ContainsID(id itemid.ID) bool {
	_, ok := ids.KeyOf(id)
	return ok
}

// KeyOf returns the key whose id is id.
func (ids *Identifiers) KeyOf(id itemid.ID) (any, bool) {
	for key, existing := range ids.keyToID {
		if existing == id {
			return key, true
		}
	}

	return nil, false
}

// Keys returns the live keys, positions first in numeric order, then other
// keys ordered by their printed form.
func (ids *Identifiers) Keys() []any {
	keys := make([]any, 0, len(ids.keyToID))
	for key := range ids.keyToID {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, compareKeys)

	return keys
}

// Clear removes every live entry and every deleted id.
func (ids *Identifiers) Clear() {
	clear(ids.keyToID)
	ids.deleted.Reset()
}

// CloneInto replaces the content of target with a copy of ids.
func (ids *Identifiers) CloneInto(target *Identifiers) {
	target.Clear()

	for key, id := range ids.keyToID {
		target.keyToID[key] = id
	}

	for _, id := range ids.deleted.Keys {
		target.deleted.Set(id, struct{}{})
	}
}

func compareKeys(a, b any) int {
	ai, aInt := a.(int)
	bi, bInt := b.(int)

	switch {
	case aInt && bInt:
		return cmp.Compare(ai, bi)
	case aInt:
		return -1
	case bInt:
		return 1
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}
