package yamlpath

import (
	"fmt"
	"hash/fnv"
	"strings"

	"assetyaml/internal/itemid"
)

// ItemKind is the kind of one path component.
type ItemKind int

const (
	// KindMember names a member of an object.
	KindMember ItemKind = iota
	// KindIndex is a position in a sequence or a key in a dictionary.
	KindIndex
	// KindItemID addresses a collection item by its item id.
	KindItemID
)

// String returns a human-readable kind name.
func (k ItemKind) String() string {
	switch k {
	case KindMember:
		return "member"
	case KindIndex:
		return "index"
	case KindItemID:
		return "item id"
	default:
		return "unknown"
	}
}

// Item is one component of a Path.
type Item struct {
	Kind  ItemKind
	Value any
}

// Member returns a member component.
func Member(name string) Item {
	return Item{Kind: KindMember, Value: name}
}

// Index returns an index component. index is a position or a dictionary key.
func Index(index any) Item {
	return Item{Kind: KindIndex, Value: index}
}

// ItemID returns an item id component.
func ItemID(id itemid.ID) Item {
	return Item{Kind: KindItemID, Value: id}
}

// AsMember returns the member name of a member component.
func (it Item) AsMember() (string, error) {
	if it.Kind != KindMember {
		return "", &MalformedPathError{Want: KindMember, Got: it.Kind}
	}

	return it.Value.(string), nil
}

// AsIndex returns the value of an index component.
func (it Item) AsIndex() (any, error) {
	if it.Kind != KindIndex {
		return nil, &MalformedPathError{Want: KindIndex, Got: it.Kind}
	}

	return it.Value, nil
}

// AsItemID returns the id of an item id component.
func (it Item) AsItemID() (itemid.ID, error) {
	if it.Kind != KindItemID {
		return itemid.Empty, &MalformedPathError{Want: KindItemID, Got: it.Kind}
	}

	return it.Value.(itemid.ID), nil
}

// Equal compares kind and value.
func (it Item) Equal(other Item) bool {
	return it.Kind == other.Kind && it.Value == other.Value
}

// key renders the component with its value type so that Index(1) and
// Index("1") never collide.
func (it Item) key() string {
	switch it.Kind {
	case KindMember:
		return "." + it.Value.(string)
	case KindItemID:
		return "{" + it.Value.(itemid.ID).String() + "}"
	default:
		return fmt.Sprintf("[%T:%v]", it.Value, it.Value)
	}
}

// Path is an ordered list of components from the root of an object graph to
// one of its nodes. The zero value is the root path.
type Path struct {
	items []Item
}

// New returns a path made of the given components.
func New(items ...Item) Path {
	return Path{items: append([]Item(nil), items...)}
}

// Items returns the components in root-to-leaf order.
func (p *Path) Items() []Item {
	return p.items
}

// Len returns the number of components.
func (p *Path) Len() int {
	return len(p.items)
}

// PushMember appends a member component.
func (p *Path) PushMember(name string) {
	p.items = append(p.items, Member(name))
}

// PushIndex appends an index component.
func (p *Path) PushIndex(index any) {
	p.items = append(p.items, Index(index))
}

// PushItemID appends an item id component.
func (p *Path) PushItemID(id itemid.ID) {
	p.items = append(p.items, ItemID(id))
}

// RemoveFirstItem drops the first component. It does nothing on the root path.
func (p *Path) RemoveFirstItem() {
	if len(p.items) == 0 {
		return
	}

	copy(p.items, p.items[1:])
	p.items = p.items[:len(p.items)-1]
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	return Path{items: append(make([]Item, 0, len(p.items)+1), p.items...)}
}

// Append returns a new path made of p followed by other.
func (p Path) Append(other Path) Path {
	items := make([]Item, 0, len(p.items)+len(other.items))
	items = append(items, p.items...)
	items = append(items, other.items...)

	return Path{items: items}
}

// With returns a new path made of p followed by item.
func (p Path) With(item Item) Path {
	clone := p.Clone()
	clone.items = append(clone.items, item)

	return clone
}

// HasPrefix reports whether the first components of p are those of prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.items) > len(p.items) {
		return false
	}

	for i, it := range prefix.items {
		if !it.Equal(p.items[i]) {
			return false
		}
	}

	return true
}

// Equal compares two paths component by component.
func (p Path) Equal(other Path) bool {
	if len(p.items) != len(other.items) {
		return false
	}

	for i, it := range p.items {
		if !it.Equal(other.items[i]) {
			return false
		}
	}

	return true
}

// Key returns a canonical string for p, suitable as a map key.
// Equal paths have equal keys.
func (p Path) Key() string {
	var sb strings.Builder
	for _, it := range p.items {
		sb.WriteString(it.key())
	}

	return sb.String()
}

// Hash returns a hash of p consistent with Equal.
func (p Path) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.Key()))

	return h.Sum64()
}

// String renders p as "(object).member[index]{itemId}".
func (p Path) String() string {
	var sb strings.Builder

	sb.WriteString("(object)")

	for _, it := range p.items {
		switch it.Kind {
		case KindMember:
			sb.WriteByte('.')
			sb.WriteString(it.Value.(string))
		case KindIndex:
			fmt.Fprintf(&sb, "[%v]", it.Value)
		case KindItemID:
			sb.WriteByte('{')
			sb.WriteString(it.Value.(itemid.ID).String())
			sb.WriteByte('}')
		}
	}

	return sb.String()
}
