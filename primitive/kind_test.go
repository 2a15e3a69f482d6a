package primitive_test

import (
	"fmt"
	"reflect"
	"time"

	"assetyaml/internal/itemid"
	"assetyaml/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(itemid.ID{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindDuration
	// KindTime
	// KindText
	// KindEnum(0)
}

func ExampleFormat() {
	for _, v := range []any{42, uint8(7), 1.0, 2.5, true, "text", 90 * time.Minute} {
		text, tag, _ := primitive.Format(reflect.ValueOf(v))
		fmt.Println(text, tag)
	}
	// Output:
	// 42 !!int
	// 7 !!int
	// 1.0 !!float
	// 2.5 !!float
	// true !!bool
	// text !!str
	// 1h30m0s !!str
}
