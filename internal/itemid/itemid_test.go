package itemid

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := make(map[ID]struct{}, 1000)

	for range 1000 {
		id := New()
		assert.False(t, id.IsEmpty())

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)

		seen[id] = struct{}{}
	}
}

func TestStringParse(t *testing.T) {
	id := ID{0x0a, 0, 0, 0, 0x0a, 0, 0, 0, 0x0a, 0, 0, 0, 0x0a, 0, 0, 0}
	assert.Equal(t, "0a0000000a0000000a0000000a000000", id.String())

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	upper, err := Parse("0A0000000A0000000A0000000A000000")
	require.NoError(t, err)
	assert.Equal(t, id, upper)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "short", input: "0a00"},
		{name: "long", input: "0a0000000a0000000a0000000a00000000"},
		{name: "not hex", input: "zz0000000a0000000a0000000a000000"},
		{name: "dashed", input: "0a000000-0a00-0000-0a00-00000a000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFromBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	id, err := FromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, b, id.Bytes())

	_, err = FromBytes(b[:3])
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestCompare(t *testing.T) {
	a := ID{1}
	b := ID{2}

	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
	assert.Equal(t, -1, Compare(Empty, a))
}

func TestTextMarshaling(t *testing.T) {
	id := New()

	text, err := id.MarshalText()
	require.NoError(t, err)

	var decoded ID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("nope")))
}

type byValue struct{ id ID }

func (b byValue) Identity() ID { return b.id }

type byPointer struct{ id ID }

func (b *byPointer) Identity() ID { return b.id }

func TestIdentityOf(t *testing.T) {
	want := MustParse("0a0000000a0000000a0000000a000000")

	id, ok := IdentityOf(reflect.ValueOf(byValue{id: want}))
	require.True(t, ok)
	assert.Equal(t, want, id)

	_, ok = IdentityOf(reflect.ValueOf(byPointer{id: want}))
	assert.False(t, ok, "pointer receiver needs an addressable value")

	elems := []byPointer{{id: want}}
	id, ok = IdentityOf(reflect.ValueOf(elems).Index(0))
	require.True(t, ok)
	assert.Equal(t, want, id)

	_, ok = IdentityOf(reflect.ValueOf((*byPointer)(nil)))
	assert.False(t, ok)

	_, ok = IdentityOf(reflect.ValueOf(byValue{}))
	assert.False(t, ok, "empty id")

	_, ok = IdentityOf(reflect.ValueOf(42))
	assert.False(t, ok)

	_, ok = IdentityOf(reflect.Value{})
	assert.False(t, ok)
}
