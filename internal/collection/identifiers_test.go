package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetyaml/internal/itemid"
	"assetyaml/internal/testkit"
)

func TestIdentifiersAddGet(t *testing.T) {
	ids := NewIdentifiers()

	require.NoError(t, ids.Add(0, testkit.ItemID(1)))
	require.NoError(t, ids.Add("key", testkit.ItemID(2)))
	assert.Error(t, ids.Add(0, testkit.ItemID(3)))

	id, ok := ids.Get(0)
	require.True(t, ok)
	assert.Equal(t, testkit.ItemID(1), id)

	id, ok = ids.Get("key")
	require.True(t, ok)
	assert.Equal(t, testkit.ItemID(2), id)

	_, ok = ids.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 2, ids.Len())
}

func TestIdentifiersInsertShiftsPositions(t *testing.T) {
	ids := NewIdentifiers()
	ids.Set(0, testkit.ItemID(10))
	ids.Set(1, testkit.ItemID(11))
	ids.Set(2, testkit.ItemID(12))

	ids.Insert(1, testkit.ItemID(99))

	assert.Equal(t, []any{0, 1, 2, 3}, ids.Keys())

	expected := []itemid.ID{testkit.ItemID(10), testkit.ItemID(99), testkit.ItemID(11), testkit.ItemID(12)}
	for pos, want := range expected {
		got, ok := ids.Get(pos)
		require.True(t, ok)
		assert.Equal(t, want, got, "position %d", pos)
	}
}

func TestIdentifiersDeleteAndShift(t *testing.T) {
	ids := NewIdentifiers()
	ids.Set(0, testkit.ItemID(10))
	ids.Set(1, testkit.ItemID(11))
	ids.Set(2, testkit.ItemID(12))

	removed, ok := ids.DeleteAndShift(0)
	require.True(t, ok)
	assert.Equal(t, testkit.ItemID(10), removed)

	assert.Equal(t, []any{0, 1}, ids.Keys())

	got, _ := ids.Get(0)
	assert.Equal(t, testkit.ItemID(11), got)

	got, _ = ids.Get(1)
	assert.Equal(t, testkit.ItemID(12), got)
}

func TestIdentifiersDeletedSet(t *testing.T) {
	ids := NewIdentifiers()
	ids.Set(0, testkit.ItemID(1))

	assert.False(t, ids.MarkAsDeleted(testkit.ItemID(1)), "live ids cannot be tombstoned")
	assert.True(t, ids.MarkAsDeleted(testkit.ItemID(3)))
	assert.True(t, ids.MarkAsDeleted(testkit.ItemID(2)))
	assert.True(t, ids.IsDeleted(testkit.ItemID(3)))
	assert.Equal(t, []itemid.ID{testkit.ItemID(3), testkit.ItemID(2)}, ids.DeletedItems())

	// Reviving a deleted id drops its tombstone.
	ids.Set(1, testkit.ItemID(3))
	assert.False(t, ids.IsDeleted(testkit.ItemID(3)))
	assert.Equal(t, []itemid.ID{testkit.ItemID(2)}, ids.DeletedItems())

	ids.UnmarkAsDeleted(testkit.ItemID(2))
	assert.Empty(t, ids.DeletedItems())
}

func TestIdentifiersKeyOfAndClear(t *testing.T) {
	ids := NewIdentifiers()
	ids.Set("a", testkit.ItemID(1))
	ids.MarkAsDeleted(testkit.ItemID(2))

	key, ok := ids.KeyOf(testkit.ItemID(1))
	require.True(t, ok)
	assert.Equal(t, "a", key)

	ids.Clear()
	assert.Zero(t, ids.Len())
	assert.Empty(t, ids.DeletedItems())
}

func TestIdentifiersCloneInto(t *testing.T) {
	ids := NewIdentifiers()
	ids.Set(0, testkit.ItemID(1))
	ids.MarkAsDeleted(testkit.ItemID(2))

	target := NewIdentifiers()
	target.Set(5, testkit.ItemID(5))

	ids.CloneInto(target)

	assert.Equal(t, []any{0}, target.Keys())
	assert.Equal(t, []itemid.ID{testkit.ItemID(2)}, target.DeletedItems())

	// The clone is independent.
	target.Set(1, testkit.ItemID(7))
	assert.Equal(t, 1, ids.Len())
}

func TestIdentifiersKeysOrder(t *testing.T) {
	ids := NewIdentifiers()
	ids.Set("b", itemid.New())
	ids.Set(2, itemid.New())
	ids.Set("a", itemid.New())
	ids.Set(0, itemid.New())

	assert.Equal(t, []any{0, 2, "a", "b"}, ids.Keys())
}
