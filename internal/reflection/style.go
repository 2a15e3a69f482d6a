package reflection

import (
	"fmt"
	"reflect"
)

// DataStyle selects block (normal) or flow (compact) layout.
type DataStyle int

const (
	StyleAny DataStyle = iota
	StyleNormal
	StyleCompact
)

// String returns the tag spelling of s.
func (s DataStyle) String() string {
	switch s {
	case StyleNormal:
		return "normal"
	case StyleCompact:
		return "compact"
	default:
		return "any"
	}
}

// ParseDataStyle parses the tag spelling of a style.
func ParseDataStyle(s string) (DataStyle, error) {
	switch s {
	case "", "any":
		return StyleAny, nil
	case "normal":
		return StyleNormal, nil
	case "compact":
		return StyleCompact, nil
	default:
		return StyleAny, fmt.Errorf("unknown data style %q", s)
	}
}

// DataStyler is implemented by types that choose their own layout. A
// collection type returning StyleCompact is written inline without item ids.
type DataStyler interface {
	DataStyle() DataStyle
}

var dataStylerType = reflect.TypeFor[DataStyler]()

func typeStyle(t reflect.Type) DataStyle {
	if !t.Implements(dataStylerType) {
		return StyleAny
	}

	return reflect.Zero(t).Interface().(DataStyler).DataStyle()
}

// Resolve returns the style in effect for a member of the given style whose
// type has style typeStyle. A member choice wins over the type.
func Resolve(memberStyle, typeStyle DataStyle) DataStyle {
	if memberStyle != StyleAny {
		return memberStyle
	}

	return typeStyle
}
