package reflection

import (
	"reflect"

	"assetyaml/primitive"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the serialization shape of a type.
type Kind int

const (
	KindUnsupported Kind = iota // func, chan, complex, unsafe pointers
	KindPrimitive               // single scalar, see primitive.FromReflectType
	KindObject                  // struct, written member by member
	KindCollection              // slice
	KindDictionary              // map
	KindArray                   // fixed-size array
	KindPointer                 // pointer to another type
	KindInterface               // interface, concrete type known only at run time
)

func kindOf(t reflect.Type) Kind {
	if primitive.FromReflectType(t) != 0 {
		return KindPrimitive
	}

	switch t.Kind() {
	case reflect.Struct:
		return KindObject
	case reflect.Slice:
		return KindCollection
	case reflect.Map:
		return KindDictionary
	case reflect.Array:
		return KindArray
	case reflect.Pointer:
		return KindPointer
	case reflect.Interface:
		return KindInterface
	default:
		return KindUnsupported
	}
}
