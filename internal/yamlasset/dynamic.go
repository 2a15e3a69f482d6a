package yamlasset

import "gopkg.in/yaml.v3"

// ConvertTo decodes a node tree into a new T with the default serializer.
// Use a pointer T to keep the item ids of the collections it holds.
func ConvertTo[T any](node *yaml.Node) (T, error) {
	var out T

	_, err := Default().DecodeNode(node, &out)

	return out, err
}

// ConvertFrom encodes value with the default serializer.
func ConvertFrom(value any) (*yaml.Node, error) {
	return Default().EncodeNode(value, nil)
}
