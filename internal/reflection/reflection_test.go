package reflection

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetyaml/internal/itemid"
)

type base struct {
	ID   itemid.ID
	Name string
}

type derived struct {
	base
	Zeta    int
	Alpha   int `asset:",order=1"`
	First   int `asset:",order=0"`
	Renamed int `asset:"Power,alias=Intensity,alias=Strength"`
	Tags    []string `asset:",style=compact"`
	Skipped int      `asset:"-"`
	hidden  int
}

type compactList []int

func (compactList) DataStyle() DataStyle { return StyleCompact }

func TestMembersOrder(t *testing.T) {
	desc := NewFactory().Find(reflect.TypeFor[derived]())
	require.NoError(t, desc.Err)
	assert.Equal(t, KindObject, desc.Kind)

	assert.Equal(t, []string{"First", "Alpha", "ID", "Name", "Zeta", "Power", "Tags"}, desc.MemberNames())
}

type root struct {
	Kind string
}

type middle struct {
	root
	Level int
}

type leaf struct {
	Own   string
	Extra int
	middle
}

func TestEmbeddedMembersComeFirst(t *testing.T) {
	desc := NewFactory().Find(reflect.TypeFor[leaf]())
	require.NoError(t, desc.Err)

	assert.Equal(t, []string{"Kind", "Level", "Own", "Extra"}, desc.MemberNames())
}

func TestMemberLookup(t *testing.T) {
	desc := NewFactory().Find(reflect.TypeFor[derived]())

	m, aliased, ok := desc.Member("Power")
	require.True(t, ok)
	assert.False(t, aliased)
	assert.Equal(t, "Renamed", m.FieldName)

	m, aliased, ok = desc.Member("Strength")
	require.True(t, ok)
	assert.True(t, aliased)
	assert.Equal(t, "Power", m.Name)

	_, _, ok = desc.Member("hidden")
	assert.False(t, ok)

	tags, _, _ := desc.Member("Tags")
	assert.Equal(t, StyleCompact, tags.Style)

	v := derived{}
	rv := reflect.ValueOf(&v).Elem()

	name, _, _ := desc.Member("Name")
	name.Set(rv, reflect.ValueOf("light"))
	assert.Equal(t, "light", v.Name)
	assert.Equal(t, "light", name.Get(rv).Interface())
}

func TestCompareMembers(t *testing.T) {
	ordered := &Member{Name: "B", Index: []int{5}, Order: 3, HasOrder: true}
	unordered := &Member{Name: "A", Index: []int{0}}
	later := &Member{Name: "C", Index: []int{1}}
	sameIndex := &Member{Name: "D", Index: []int{1}}

	assert.Negative(t, CompareMembers(ordered, unordered), "unordered side is last")
	assert.Positive(t, CompareMembers(unordered, ordered))
	assert.Negative(t, CompareMembers(unordered, later), "declaration order")
	assert.Negative(t, CompareMembers(later, sameIndex), "name order")
	assert.Zero(t, CompareMembers(later, later))

	promoted := &Member{Name: "E", Index: []int{2, 0}}
	assert.Negative(t, CompareMembers(promoted, unordered), "embedded members first")
	assert.Positive(t, CompareMembers(unordered, promoted))
	assert.Negative(t, CompareMembers(ordered, promoted))
}

func TestKinds(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		t    reflect.Type
		want Kind
	}{
		{reflect.TypeFor[int](), KindPrimitive},
		{reflect.TypeFor[time.Duration](), KindPrimitive},
		{reflect.TypeFor[itemid.ID](), KindPrimitive},
		{reflect.TypeFor[base](), KindObject},
		{reflect.TypeFor[[]string](), KindCollection},
		{reflect.TypeFor[map[string]int](), KindDictionary},
		{reflect.TypeFor[[3]int](), KindArray},
		{reflect.TypeFor[*base](), KindPointer},
		{reflect.TypeFor[any](), KindInterface},
		{reflect.TypeFor[func()](), KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, f.Find(tt.t).Kind)
		})
	}

	assert.Equal(t, "Dictionary", KindDictionary.String())
	assert.Equal(t, StyleCompact, f.Find(reflect.TypeFor[compactList]()).Style)
}

func TestInvalidTag(t *testing.T) {
	type bad struct {
		X int `asset:",order=first"`
	}

	assert.Error(t, NewFactory().Find(reflect.TypeFor[bad]()).Err)
}

func TestContainers(t *testing.T) {
	f := NewFactory()

	var m map[string]int

	dict := f.Find(reflect.TypeOf(m)).Container
	require.NotNil(t, dict)
	assert.Equal(t, ShapeMapping, dict.Shape())

	rv := reflect.ValueOf(&m).Elem()
	dict.Reset(rv, 2)
	require.NoError(t, dict.Insert(rv, reflect.ValueOf("b"), reflect.ValueOf(2)))
	require.NoError(t, dict.Insert(rv, reflect.ValueOf("a"), reflect.ValueOf(1)))

	var keys []string
	require.NoError(t, dict.Enumerate(rv, func(key, _ reflect.Value) error {
		keys = append(keys, key.String())
		return nil
	}))
	assert.Equal(t, []string{"a", "b"}, keys)

	original := m
	dict.Reset(rv, 0)
	assert.Empty(t, m)
	assert.Equal(t, reflect.ValueOf(original).Pointer(), reflect.ValueOf(m).Pointer(), "maps are cleared in place")

	var arr [2]int

	fixed := f.Find(reflect.TypeOf(arr)).Container
	av := reflect.ValueOf(&arr).Elem()
	require.NoError(t, fixed.Insert(av, reflect.ValueOf(1), reflect.ValueOf(7)))
	assert.Error(t, fixed.Insert(av, reflect.ValueOf(2), reflect.ValueOf(7)))
	assert.Equal(t, [2]int{0, 7}, arr)
	assert.Equal(t, reflect.TypeFor[int](), fixed.KeyType())
}

func TestSortKeys(t *testing.T) {
	keys := []reflect.Value{reflect.ValueOf(10), reflect.ValueOf(2), reflect.ValueOf(-1)}
	SortKeys(keys)

	got := make([]int64, len(keys))
	for i, k := range keys {
		got[i] = k.Int()
	}

	assert.Equal(t, []int64{-1, 2, 10}, got)
}

func TestTypeRegistry(t *testing.T) {
	r := NewTypeRegistry()
	require.NoError(t, r.Register("Light", reflect.TypeFor[*base](), "OldLight"))
	assert.Error(t, r.Register("Other", reflect.TypeFor[base]()), "one tag per type")
	assert.Error(t, r.Register("!Light", reflect.TypeFor[derived]()), "one type per tag")

	typ, aliased, ok := r.TypeOf("!Light")
	require.True(t, ok)
	assert.False(t, aliased)
	assert.Equal(t, reflect.TypeFor[base](), typ)

	_, aliased, ok = r.TypeOf("!OldLight")
	require.True(t, ok)
	assert.True(t, aliased)

	tag, ok := r.TagOf(reflect.TypeFor[*base]())
	require.True(t, ok)
	assert.Equal(t, "!Light", tag)
}

func TestFactoryConcurrentFind(t *testing.T) {
	f := NewFactory()

	const workers = 16

	got := make([]*TypeDescriptor, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			got[i] = f.Find(reflect.TypeFor[derived]())
		}(i)
	}

	wg.Wait()

	for _, d := range got {
		assert.Same(t, got[0], d)
	}
}
