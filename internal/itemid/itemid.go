package itemid

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
)

// Size is the number of bytes of an ID.
const Size = 16

// ID is an opaque 128-bit identifier naming one item of a collection or
// dictionary independently of its position.
type ID [Size]byte

// Empty is the all-zero ID.
var Empty ID

// ErrInvalidLength is returned when decoding an ID from the wrong number of bytes.
var ErrInvalidLength = errors.New("itemid: invalid length")

// Identifiable is implemented by element types that carry their own identity.
// Legacy documents without item ids reuse it when ids are synthesized.
type Identifiable interface {
	Identity() ID
}

var identifiableType = reflect.TypeFor[Identifiable]()

// IdentityOf returns the non-empty id v carries itself, through v or, when v
// is addressable, through a pointer to it.
func IdentityOf(v reflect.Value) (ID, bool) {
	if !v.IsValid() {
		return Empty, false
	}

	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return Empty, false
	}

	if v.Type().Implements(identifiableType) {
		id := v.Interface().(Identifiable).Identity()
		return id, !id.IsEmpty()
	}

	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(identifiableType) {
		id := v.Addr().Interface().(Identifiable).Identity()
		return id, !id.IsEmpty()
	}

	return Empty, false
}

// New returns a fresh random ID.
func New() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand.Read never returns an error on supported platforms.
		panic("itemid: random source failed: " + err.Error())
	}

	return id
}

// FromBytes builds an ID from exactly Size bytes.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), Size)
	}

	copy(id[:], b)

	return id, nil
}

// Parse decodes the 32 hexadecimal characters produced by ID.String.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != 2*Size {
		return id, fmt.Errorf("%w: %q has %d characters, want %d", ErrInvalidLength, s, len(s), 2*Size)
	}

	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return Empty, fmt.Errorf("itemid: invalid id %q: %w", s, err)
	}

	return id, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return id
}

// String returns the lowercase hexadecimal form of the ID.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsEmpty reports whether id is the all-zero ID.
func (id ID) IsEmpty() bool {
	return id == Empty
}

// Bytes returns a copy of the ID bytes.
func (id ID) Bytes() []byte {
	return append([]byte(nil), id[:]...)
}

// Compare orders two IDs byte-wise.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}
