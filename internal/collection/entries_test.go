package collection

import (
	"reflect"
	"runtime"
	"testing"
	"time"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetyaml/internal/testkit"
)

func TestIdsOfEntry(t *testing.T) {
	buckets := map[string][]string{"a": {"x"}, "b": {"y"}}

	a := IdsOfEntry(buckets, "a")
	assert.Same(t, a, IdsOfEntry(buckets, "a"))
	assert.NotSame(t, a, IdsOfEntry(buckets, "b"))

	a.Set(0, testkit.ItemID(1))

	alias := buckets
	found, ok := TryEntryIdsOfValue(reflect.ValueOf(alias), "a", "")
	require.True(t, ok)
	assert.Same(t, a, found)

	_, ok = TryEntryIdsOfValue(reflect.ValueOf(buckets), "a", ".Inner")
	assert.False(t, ok, "paths inside the value have their own registry")

	assert.Panics(t, func() { IdsOfEntry(map[string][]string(nil), "a") })
	assert.Panics(t, func() { IdsOfEntry([]string{}, 0) })
}

func TestPruneEntries(t *testing.T) {
	buckets := map[string][]string{"a": {"x"}, "b": {"y"}}
	IdsOfEntry(buckets, "a")
	IdsOfEntry(buckets, "b")

	PruneEntries(reflect.ValueOf(buckets), func(key any) bool { return key == "a" })

	_, ok := TryEntryIdsOfValue(reflect.ValueOf(buckets), "a", "")
	assert.True(t, ok)
	_, ok = TryEntryIdsOfValue(reflect.ValueOf(buckets), "b", "")
	assert.False(t, ok)
}

func TestMapDeleteDropsEntryRegistry(t *testing.T) {
	buckets := map[string][]string{}
	MapSet(buckets, "a", []string{"x"})
	IdsOfEntry(buckets, "a").Set(0, testkit.ItemID(3))

	_, ok := MapDelete(buckets, "a", true)
	require.True(t, ok)

	_, ok = TryEntryIdsOfValue(reflect.ValueOf(buckets), "a", "")
	assert.False(t, ok)
}

func TestEntryTablesDieWithTheirMaps(t *testing.T) {
	const maps = 50

	keys := make([]weak.Pointer[byte], 0, maps)

	for range maps {
		m := map[string][]string{"a": {"x"}}
		IdsOfEntry(m, "a").Set(0, testkit.ItemID(1))

		key := weak.Make((*byte)(reflect.ValueOf(m).UnsafePointer()))
		_, ok := entryTables.Load(key)
		require.True(t, ok)

		keys = append(keys, key)
		runtime.KeepAlive(m)
	}

	assert.Eventually(t, func() bool {
		runtime.GC()

		for _, k := range keys {
			if _, ok := entryTables.Load(k); ok {
				return false
			}
		}

		return true
	}, 5*time.Second, 10*time.Millisecond)
}
