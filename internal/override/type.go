package override

import "strings"

// Type describes how a value of a derived asset relates to its base asset.
type Type int

const (
	// Base means the value is inherited from the base asset.
	Base Type = 0
	// New means the value was set in the derived asset.
	New Type = 1 << (iota - 1)
	// Sealed means the value must not be overridden further down.
	Sealed
)

const (
	newPostfix    = '*'
	sealedPostfix = '!'
)

// IsNew reports whether the New flag is set.
func (t Type) IsNew() bool { return t&New != 0 }

// IsSealed reports whether the Sealed flag is set.
func (t Type) IsSealed() bool { return t&Sealed != 0 }

// String returns the flag names joined with "|".
func (t Type) String() string {
	if t == Base {
		return "base"
	}

	var parts []string
	if t.IsNew() {
		parts = append(parts, "new")
	}

	if t.IsSealed() {
		parts = append(parts, "sealed")
	}

	return strings.Join(parts, "|")
}

// Postfix returns the key postfix encoding t: "", "*", "!" or "*!".
func (t Type) Postfix() string {
	var sb strings.Builder
	if t.IsNew() {
		sb.WriteByte(newPostfix)
	}

	if t.IsSealed() {
		sb.WriteByte(sealedPostfix)
	}

	return sb.String()
}

// AppendPostfix returns key with the postfix of t appended.
func AppendPostfix(key string, t Type) string {
	return key + t.Postfix()
}

// SplitPostfix strips a trailing override postfix from key.
// The postfix characters may appear in either order.
func SplitPostfix(key string) (string, Type) {
	var t Type

	for len(key) > 0 {
		switch key[len(key)-1] {
		case newPostfix:
			if t.IsNew() {
				return key, t
			}

			t |= New
		case sealedPostfix:
			if t.IsSealed() {
				return key, t
			}

			t |= Sealed
		default:
			return key, t
		}

		key = key[:len(key)-1]
	}

	return key, t
}
