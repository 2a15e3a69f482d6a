package primitive

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetyaml/internal/itemid"
)

type level int

func TestParseNatural(t *testing.T) {
	tests := []struct {
		name string
		text string
		tag  string
		into reflect.Type
		want any
	}{
		{"int", "42", TagInt, reflect.TypeFor[int](), 42},
		{"hex", "0x1F", TagInt, reflect.TypeFor[int32](), int32(31)},
		{"underscores", "1_000", TagInt, reflect.TypeFor[uint16](), uint16(1000)},
		{"int into float", "3", TagInt, reflect.TypeFor[float64](), 3.0},
		{"float", "2.5", TagFloat, reflect.TypeFor[float32](), float32(2.5)},
		{"inf", ".inf", TagFloat, reflect.TypeFor[float64](), math.Inf(1)},
		{"bool", "true", TagBool, reflect.TypeFor[bool](), true},
		{"string", "hello", TagStr, reflect.TypeFor[string](), "hello"},
		{"enum", "3", TagInt, reflect.TypeFor[level](), level(3)},
		{"duration", "1h30m", TagStr, reflect.TypeFor[time.Duration](), 90 * time.Minute},
		{"number as string", "123", TagInt, reflect.TypeFor[string](), "123"},
		{"bool as string", "yes", TagStr, reflect.TypeFor[bool](), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, tt.tag, tt.into, DefaultConversions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestParseTimeAndText(t *testing.T) {
	got, err := Parse("2024-03-01T10:00:00Z", TagTimestamp, reflect.TypeFor[time.Time](), DefaultConversions)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got.Interface())

	id := itemid.New()
	got, err = Parse(id.String(), TagStr, reflect.TypeFor[itemid.ID](), CategoryNone)
	require.NoError(t, err)
	assert.Equal(t, id, got.Interface())
}

func TestParseRejectsDisabledConversions(t *testing.T) {
	_, err := Parse("1.5", TagFloat, reflect.TypeFor[int](), DefaultConversions)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, reflect.TypeFor[int](), convErr.Type)

	got, err := Parse("2.0", TagFloat, reflect.TypeFor[int](), CategoryUnsafeNumber)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Interface())

	_, err = Parse("2.5", TagFloat, reflect.TypeFor[int](), CategoryUnsafeNumber)
	assert.Error(t, err, "fractional values never become integers")

	_, err = Parse("300", TagInt, reflect.TypeFor[int8](), CategoryAll)
	assert.Error(t, err, "out of range")

	got, err = Parse("1500000000", TagInt, reflect.TypeFor[time.Duration](), CategoryNanoseconds)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, got.Interface())

	_, err = Parse("1500000000", TagInt, reflect.TypeFor[time.Duration](), DefaultConversions)
	assert.Error(t, err)
}

func TestFormatParseRoundTrip(t *testing.T) {
	values := []any{
		int64(-9), uint32(9), float32(0.25), 1e21, false, "~(deleted)", "123",
		45 * time.Second, time.Date(2020, 1, 2, 3, 4, 5, 6, time.UTC), level(2), itemid.New(),
	}

	for _, v := range values {
		text, tag, err := Format(reflect.ValueOf(v))
		require.NoError(t, err)

		got, err := Parse(text, tag, reflect.TypeOf(v), DefaultConversions)
		require.NoError(t, err, "%T %v", v, v)
		assert.Equal(t, v, got.Interface())
	}
}

func TestNatural(t *testing.T) {
	assert.Equal(t, 7, Natural("7", TagInt))
	assert.Equal(t, uint64(math.MaxUint64), Natural("18446744073709551615", TagInt))
	assert.Equal(t, 1.5, Natural("1.5", TagFloat))
	assert.Equal(t, true, Natural("true", TagBool))
	assert.Nil(t, Natural("~", TagNull))
	assert.Equal(t, "text", Natural("text", TagStr))
}
