package yamlasset

import (
	"strings"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/itemid"
	"assetyaml/internal/override"
)

// Tombstone is the value written in place of an item deleted in a derived
// asset.
const Tombstone = "~(deleted)"

// KeySeparator joins the item id and the original key of a dictionary entry.
const KeySeparator = '~'

const idTextLen = 2 * itemid.Size

// IdentifiedKey is the composite key of a dictionary entry: the entry
// identity and the text of the original key.
type IdentifiedKey struct {
	ID  itemid.ID
	Key string
}

// String returns "<id>~<key>".
func (k IdentifiedKey) String() string {
	return k.ID.String() + string(KeySeparator) + k.Key
}

// ItemKey returns the mapping key of a collection item.
func ItemKey(id itemid.ID, t override.Type) string {
	return override.AppendPostfix(id.String(), t)
}

// DictionaryKey returns the mapping key of a dictionary entry. The override
// postfix follows the id.
func DictionaryKey(key IdentifiedKey, t override.Type) string {
	return override.AppendPostfix(key.ID.String(), t) + string(KeySeparator) + key.Key
}

// ParseItemKey splits "<id>[postfix]".
func ParseItemKey(text string) (itemid.ID, override.Type, bool) {
	if len(text) < idTextLen {
		return itemid.Empty, override.Base, false
	}

	rest, t := override.SplitPostfix(text[idTextLen:])
	if rest != "" {
		return itemid.Empty, override.Base, false
	}

	id, err := itemid.Parse(text[:idTextLen])
	if err != nil {
		return itemid.Empty, override.Base, false
	}

	return id, t, true
}

// ParseDictionaryKey splits "<id>[postfix]~<key>". The key text may be empty,
// which is how tombstones of dictionary entries are written.
func ParseDictionaryKey(text string) (IdentifiedKey, override.Type, bool) {
	if len(text) <= idTextLen {
		return IdentifiedKey{}, override.Base, false
	}

	sep := strings.IndexByte(text[idTextLen:], KeySeparator)
	if sep < 0 {
		return IdentifiedKey{}, override.Base, false
	}

	id, t, ok := ParseItemKey(text[:idTextLen+sep])
	if !ok {
		return IdentifiedKey{}, override.Base, false
	}

	return IdentifiedKey{ID: id, Key: text[idTextLen+sep+1:]}, t, true
}

// IsTombstone reports whether node is the plain deleted-item sentinel.
// A quoted "~(deleted)" is an ordinary string.
func IsTombstone(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 &&
		node.Value == Tombstone
}

func tombstoneNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: Tombstone}
}

func keyNode(text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}
