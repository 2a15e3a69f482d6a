package reflection

import (
	"cmp"
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Shape is one of the container variants.
type Shape int

const (
	ShapeSequence Shape = iota + 1
	ShapeMapping
	ShapeFixedArray
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	case ShapeFixedArray:
		return "fixed array"
	default:
		return "unknown"
	}
}

var intType = reflect.TypeFor[int]()

// Container is the uniform capability set of slices, maps and arrays.
type Container interface {
	Shape() Shape
	ElementType() reflect.Type
	// KeyType is int for sequences and arrays.
	KeyType() reflect.Type
	Len(v reflect.Value) int
	// Enumerate calls fn for each entry in a deterministic order: position
	// order for sequences and arrays, SortKeys order for mappings.
	Enumerate(v reflect.Value, fn func(key, elem reflect.Value) error) error
	// Reset prepares dst, which must be settable, to receive entries. A nil
	// map or slice is allocated; an existing map is cleared in place so the
	// map keeps its identity.
	Reset(dst reflect.Value, capacity int)
	// Insert stores elem in dst. Sequences append and ignore key.
	Insert(dst, key, elem reflect.Value) error
}

type sequence struct{ t reflect.Type }

func (s sequence) Shape() Shape              { return ShapeSequence }
func (s sequence) ElementType() reflect.Type { return s.t.Elem() }
func (s sequence) KeyType() reflect.Type     { return intType }
func (s sequence) Len(v reflect.Value) int   { return v.Len() }

func (s sequence) Enumerate(v reflect.Value, fn func(key, elem reflect.Value) error) error {
	for i := range v.Len() {
		if err := fn(reflect.ValueOf(i), v.Index(i)); err != nil {
			return err
		}
	}

	return nil
}

func (s sequence) Reset(dst reflect.Value, capacity int) {
	dst.Set(reflect.MakeSlice(s.t, 0, capacity))
}

func (s sequence) Insert(dst, _, elem reflect.Value) error {
	dst.Set(reflect.Append(dst, elem))
	return nil
}

type mapping struct{ t reflect.Type }

func (m mapping) Shape() Shape              { return ShapeMapping }
func (m mapping) ElementType() reflect.Type { return m.t.Elem() }
func (m mapping) KeyType() reflect.Type     { return m.t.Key() }
func (m mapping) Len(v reflect.Value) int   { return v.Len() }

func (m mapping) Enumerate(v reflect.Value, fn func(key, elem reflect.Value) error) error {
	keys := v.MapKeys()
	SortKeys(keys)

	for _, key := range keys {
		if err := fn(key, v.MapIndex(key)); err != nil {
			return err
		}
	}

	return nil
}

func (m mapping) Reset(dst reflect.Value, capacity int) {
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(m.t, capacity))
		return
	}

	dst.Clear()
}

func (m mapping) Insert(dst, key, elem reflect.Value) error {
	dst.SetMapIndex(key, elem)
	return nil
}

type fixedArray struct{ t reflect.Type }

func (a fixedArray) Shape() Shape              { return ShapeFixedArray }
func (a fixedArray) ElementType() reflect.Type { return a.t.Elem() }
func (a fixedArray) KeyType() reflect.Type     { return intType }
func (a fixedArray) Len(v reflect.Value) int   { return a.t.Len() }

func (a fixedArray) Enumerate(v reflect.Value, fn func(key, elem reflect.Value) error) error {
	return sequence{a.t}.Enumerate(v, fn)
}

func (a fixedArray) Reset(dst reflect.Value, _ int) {
	dst.SetZero()
}

func (a fixedArray) Insert(dst, key, elem reflect.Value) error {
	i := int(key.Int())
	if i < 0 || i >= a.t.Len() {
		return fmt.Errorf("index %d out of range for %s", i, a.t)
	}

	dst.Index(i).Set(elem)

	return nil
}

func containerOf(t reflect.Type) Container {
	switch t.Kind() {
	case reflect.Slice:
		return sequence{t}
	case reflect.Map:
		return mapping{t}
	case reflect.Array:
		return fixedArray{t}
	default:
		return nil
	}
}

// SortKeys orders map keys deterministically: numbers by value, strings and
// text marshalers by text, then anything else by its printed form.
func SortKeys(keys []reflect.Value) {
	slices.SortStableFunc(keys, compareKeys)
}

func compareKeys(a, b reflect.Value) int {
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	case reflect.Bool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	}

	return strings.Compare(keyText(a), keyText(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}

	return 0
}

func keyText(v reflect.Value) string {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	if m, ok := v.Interface().(encoding.TextMarshaler); ok {
		if text, err := m.MarshalText(); err == nil {
			return string(text)
		}
	}

	return fmt.Sprint(v.Interface())
}
