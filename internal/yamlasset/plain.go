package yamlasset

import (
	"reflect"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/reflection"
	"assetyaml/internal/yamlpath"
	"assetyaml/primitive"
)

// plainSerializer writes slices and maps without item ids, as flow
// sequences and mappings. Registries are neither read nor written.
type plainSerializer struct {
	desc *reflection.TypeDescriptor
}

func (s plainSerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	if v.IsNil() {
		return nullNode(), nil
	}

	if v.Len() > 0 {
		leave, err := ctx.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
	}

	if s.desc.Container.Shape() == reflection.ShapeSequence {
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		defer ctx.detach()()

		for i := range v.Len() {
			elem, err := ctx.EncodeAt(yamlpath.Index(i), v.Index(i), reflection.StyleAny)
			if err != nil {
				return nil, err
			}

			node.Content = append(node.Content, elem)
		}

		return node, nil
	}

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}

	err := s.desc.Container.Enumerate(v, func(key, elem reflect.Value) error {
		text, tag, err := primitive.Format(key)
		if err != nil {
			return &ConstructionError{Type: key.Type(), Reason: "map key: " + err.Error()}
		}

		value, err := ctx.EncodeEntry(yamlpath.Index(key.Interface()), v, key, elem, reflection.StyleAny)
		if err != nil {
			return err
		}

		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}, value)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

func (s plainSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if s.desc.Container.Shape() == reflection.ShapeSequence {
		if node.Kind != yaml.SequenceNode {
			return ctx.mismatch(node, "compact "+s.desc.Type.String(), nil)
		}

		n := len(node.Content)
		dst.Set(reflect.MakeSlice(dst.Type(), n, n))
		defer ctx.detach()()

		for i, child := range node.Content {
			slot := dst.Index(i)
			ctx.initialize(slot)

			if err := ctx.DecodeAt(yamlpath.Index(i), child, slot, reflection.StyleAny); err != nil {
				return err
			}
		}

		return nil
	}

	if node.Kind != yaml.MappingNode {
		return ctx.mismatch(node, "compact "+s.desc.Type.String(), nil)
	}

	s.desc.Container.Reset(dst, len(node.Content)/2)

	entries, err := decodePlainMap(ctx, node, s.desc, dst)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := s.desc.Container.Insert(dst, entry.Key, entry.Value); err != nil {
			return ctx.mismatch(node, s.desc.Type.String(), err)
		}
	}

	return nil
}

// decodePlainMap reads the entries of a mapping keyed by the map keys
// themselves. owner is the map the entries are stored into afterwards.
func decodePlainMap(ctx *DecodeContext, node *yaml.Node, desc *reflection.TypeDescriptor, owner reflect.Value) ([]DictionaryEntry, error) {
	keyType := desc.Container.KeyType()
	elemType := desc.Container.ElementType()
	entries := make([]DictionaryEntry, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyAt, valueNode := node.Content[i], node.Content[i+1]
		if keyAt.Kind != yaml.ScalarNode {
			return nil, ctx.mismatch(keyAt, keyType.String()+" key", nil)
		}

		key, err := primitive.Parse(keyAt.Value, resolvedTag(keyAt), keyType, primitive.CategoryAll)
		if err != nil {
			return nil, ctx.mismatch(keyAt, keyType.String()+" key", err)
		}

		elem := reflect.New(elemType).Elem()
		ctx.initialize(elem)

		if err := ctx.DecodeEntry(yamlpath.Index(key.Interface()), valueNode, owner, key, elem, reflection.StyleAny); err != nil {
			return nil, err
		}

		entries = append(entries, DictionaryEntry{Key: key, Value: elem})
	}

	return entries, nil
}
