package primitive

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// YAML core schema tags of scalar nodes.
const (
	TagNull      = "!!null"
	TagBool      = "!!bool"
	TagInt       = "!!int"
	TagFloat     = "!!float"
	TagStr       = "!!str"
	TagTimestamp = "!!timestamp"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ConversionError reports a scalar that cannot be decoded into its target.
type ConversionError struct {
	Text string
	Tag  string
	Type reflect.Type
	Err  error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot decode %s %q into %s", e.Tag, e.Text, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// SourceKind returns the kind a scalar with the given resolved tag has.
func SourceKind(tag string) KindEnum {
	switch tag {
	case TagInt:
		return KindInt64
	case TagFloat:
		return KindFloat64
	case TagBool:
		return KindBool
	case TagTimestamp:
		return KindTime
	default:
		return KindString
	}
}

// Format renders a scalar value. The returned tag is the core schema tag the
// text must resolve to when read back.
func Format(v reflect.Value) (string, string, error) {
	kind := FromReflectType(v.Type())
	if kind == KindPrimitiveEnum {
		kind = underlying(v.Type())
	}

	switch {
	case kind == 0:
		return "", "", fmt.Errorf("%s is not a scalar type", v.Type())
	case kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10), TagInt, nil
	case kind.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10), TagInt, nil
	case kind.IsFloat():
		return formatFloat(v.Float(), kind.Bits()), TagFloat, nil
	}

	switch kind {
	case KindBool:
		return strconv.FormatBool(v.Bool()), TagBool, nil
	case KindString:
		return v.String(), TagStr, nil
	case KindTime:
		return v.Interface().(time.Time).Format(time.RFC3339Nano), TagTimestamp, nil
	case KindDuration:
		return time.Duration(v.Int()).String(), TagStr, nil
	case KindText:
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", "", fmt.Errorf("marshal %s: %w", v.Type(), err)
		}

		return string(text), TagStr, nil
	default:
		return "", "", fmt.Errorf("%s is not a scalar type", v.Type())
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}

	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}

// Parse decodes scalar text with the resolved tag into a new value of rtype.
func Parse(text, tag string, rtype reflect.Type, allowed CategoryEnum) (reflect.Value, error) {
	kind := FromReflectType(rtype)
	if kind == 0 {
		return reflect.Value{}, &ConversionError{Text: text, Tag: tag, Type: rtype, Err: fmt.Errorf("not a scalar type")}
	}

	if kind == KindPrimitiveEnum {
		kind = underlying(rtype)
	}

	from := SourceKind(tag)
	if !Convertible(from, kind, allowed) {
		return reflect.Value{}, &ConversionError{Text: text, Tag: tag, Type: rtype}
	}

	out := reflect.New(rtype).Elem()

	if err := parseInto(out, kind, from, text); err != nil {
		return reflect.Value{}, &ConversionError{Text: text, Tag: tag, Type: rtype, Err: err}
	}

	return out, nil
}

func parseInto(out reflect.Value, kind, from KindEnum, text string) error {
	switch {
	case kind.IsSigned():
		n, err := parseSigned(text, from, kind.Bits())
		if err != nil {
			return err
		}

		out.SetInt(n)

		return nil
	case kind.IsUnsigned():
		n, err := parseUnsigned(text, from, kind.Bits())
		if err != nil {
			return err
		}

		out.SetUint(n)

		return nil
	case kind.IsFloat():
		f, err := parseFloat(text, kind.Bits())
		if err != nil {
			return err
		}

		out.SetFloat(f)

		return nil
	}

	switch kind {
	case KindBool:
		b, err := parseBool(text)
		if err != nil {
			return err
		}

		out.SetBool(b)
	case KindString:
		out.SetString(text)
	case KindTime:
		t, err := parseTime(text, from)
		if err != nil {
			return err
		}

		out.Set(reflect.ValueOf(t))
	case KindDuration:
		d, err := parseDuration(text, from)
		if err != nil {
			return err
		}

		out.SetInt(int64(d))
	case KindText:
		return out.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
	default:
		return fmt.Errorf("unsupported kind %s", kind)
	}

	return nil
}

func cleanNumber(text string) string {
	return strings.ReplaceAll(strings.TrimPrefix(text, "+"), "_", "")
}

func parseSigned(text string, from KindEnum, bits int) (int64, error) {
	switch from {
	case KindBool:
		b, err := parseBool(text)
		if b {
			return 1, err
		}

		return 0, err
	case KindFloat64:
		f, err := parseFloat(text, 64)
		if err != nil {
			return 0, err
		}

		if f != math.Trunc(f) || f < -math.Ldexp(1, bits-1) || f >= math.Ldexp(1, bits-1) {
			return 0, fmt.Errorf("%s is not an integral %d-bit value", text, bits)
		}

		return int64(f), nil
	default:
		return strconv.ParseInt(cleanNumber(text), 0, bits)
	}
}

func parseUnsigned(text string, from KindEnum, bits int) (uint64, error) {
	switch from {
	case KindBool:
		b, err := parseBool(text)
		if b {
			return 1, err
		}

		return 0, err
	case KindFloat64:
		f, err := parseFloat(text, 64)
		if err != nil {
			return 0, err
		}

		if f != math.Trunc(f) || f < 0 || f >= math.Ldexp(1, bits) {
			return 0, fmt.Errorf("%s is not an integral unsigned %d-bit value", text, bits)
		}

		return uint64(f), nil
	default:
		return strconv.ParseUint(cleanNumber(text), 0, bits)
	}
}

func parseFloat(text string, bits int) (float64, error) {
	switch strings.ToLower(text) {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	case ".nan":
		return math.NaN(), nil
	}

	cleaned := cleanNumber(text)
	if strings.HasPrefix(cleaned, "0x") || strings.HasPrefix(cleaned, "0o") || strings.HasPrefix(cleaned, "-0x") {
		n, err := strconv.ParseInt(cleaned, 0, 64)
		return float64(n), err
	}

	return strconv.ParseFloat(cleaned, bits)
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "true", "yes", "on", "y", "1":
		return true, nil
	case "false", "no", "off", "n", "0":
		return false, nil
	}

	if n, err := strconv.ParseInt(cleanNumber(text), 0, 64); err == nil {
		return n != 0, nil
	}

	return false, fmt.Errorf("%q is not a boolean", text)
}

func parseTime(text string, from KindEnum) (time.Time, error) {
	if from.IsInteger() {
		n, err := strconv.ParseInt(cleanNumber(text), 0, 64)
		if err != nil {
			return time.Time{}, err
		}

		return time.Unix(n, 0).UTC(), nil
	}

	var firstErr error

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, firstErr
}

func parseDuration(text string, from KindEnum) (time.Duration, error) {
	switch {
	case from.IsInteger():
		n, err := strconv.ParseInt(cleanNumber(text), 0, 64)
		return time.Duration(n), err
	case from.IsFloat():
		f, err := parseFloat(text, 64)
		return time.Duration(f * float64(time.Second)), err
	default:
		return time.ParseDuration(text)
	}
}

// Natural decodes scalar text for an untyped target the way the YAML core
// schema resolves it.
func Natural(text, tag string) any {
	switch tag {
	case TagNull:
		return nil
	case TagBool:
		if b, err := parseBool(text); err == nil {
			return b
		}
	case TagInt:
		if n, err := strconv.ParseInt(cleanNumber(text), 0, 64); err == nil {
			if n == int64(int(n)) {
				return int(n)
			}

			return n
		}

		if n, err := strconv.ParseUint(cleanNumber(text), 0, 64); err == nil {
			return n
		}
	case TagFloat:
		if f, err := parseFloat(text, 64); err == nil {
			return f
		}
	case TagTimestamp:
		if t, err := parseTime(text, KindTime); err == nil {
			return t
		}
	}

	return text
}
