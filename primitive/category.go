package primitive

// CategoryEnum selects the cross-kind conversions a decoder tolerates when a
// scalar in a document does not have the kind of its target.
type CategoryEnum int

// ConversionPair is a source scalar kind and a target kind.
type ConversionPair struct {
	From, To KindEnum
}

const (
	CategoryUnsafeNumber CategoryEnum = 1 << iota // float -> int, accepted only for integral values
	CategoryTextNumber                            // int, uint, float <-> string: textual number representation
	CategoryNumericBool                           // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                             // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                              // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                           // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                               // float(seconds) <-> time.Duration: numerical (floating-point) duration representation

	CategoryAll  = (1 << iota) - 1 //all categories combined
	CategoryNone = 0               // no categories selected
)

// DefaultConversions is what a scalar written by Format needs to read back,
// plus any scalar text for strings.
const DefaultConversions = CategoryTextNumber | CategoryTextualBool | CategoryDatetime | CategoryDuration

// Natural reports whether pair needs no category: same kinds, integers into
// any number kind and floats into floats. Range is checked when decoding.
func (pair ConversionPair) Natural() bool {
	from, to := pair.From, pair.To

	return from == to || to == KindText ||
		from.IsInteger() && to.IsNumber() ||
		from.IsFloat() && to.IsFloat()
}

// Category returns the category enabling the conversion of pair, or
// CategoryNone when the pair is natural or impossible.
func Category(pair ConversionPair) CategoryEnum {
	from, to := pair.From, pair.To

	switch {
	case pair.Natural():
		return CategoryNone
	case from.IsFloat() && to.IsInteger():
		return CategoryUnsafeNumber
	case from.IsNumber() && to == KindString, from == KindString && to.IsNumber():
		return CategoryTextNumber
	case from.IsInteger() && to == KindBool, from == KindBool && to.IsInteger():
		return CategoryNumericBool
	case from == KindString && to == KindBool, from == KindBool && to == KindString:
		return CategoryTextualBool
	case from == KindString && to == KindTime, from == KindTime && to == KindString:
		return CategoryDatetime
	case from.IsInteger() && to == KindTime, from == KindTime && to.IsInteger():
		return CategoryTimestamp
	case from == KindString && to == KindDuration, from == KindDuration && to == KindString:
		return CategoryDuration
	case from.IsInteger() && to == KindDuration, from == KindDuration && to.IsInteger():
		return CategoryNanoseconds
	case from.IsFloat() && to == KindDuration, from == KindDuration && to.IsFloat():
		return CategorySeconds
	default:
		return CategoryNone
	}
}

// Convertible reports whether a value of kind from may be decoded into kind
// to with the given categories enabled.
func Convertible(from, to KindEnum, allowed CategoryEnum) bool {
	pair := ConversionPair{from, to}
	if pair.Natural() {
		return true
	}

	category := Category(pair)

	return category != CategoryNone && allowed&category != 0
}
