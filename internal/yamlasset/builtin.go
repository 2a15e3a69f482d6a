package yamlasset

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/collection"
	"assetyaml/internal/diagnostic"
	"assetyaml/internal/itemid"
	"assetyaml/internal/override"
	"assetyaml/internal/reflection"
	"assetyaml/internal/yamlpath"
	"assetyaml/primitive"
)

var (
	marshalerType   = reflect.TypeFor[yaml.Marshaler]()
	unmarshalerType = reflect.TypeFor[yaml.Unmarshaler]()
	anyType         = reflect.TypeFor[any]()
)

// isYAMLMarshaler reports whether t writes itself through yaml.v3.
// Pointer and interface types are left to their own serializers, which
// reach the marshaler of the concrete value.
func isYAMLMarshaler(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return false
	}

	pt := reflect.PointerTo(t)

	return pt.Implements(marshalerType) && pt.Implements(unmarshalerType)
}

// resolvedTag returns the core schema tag of a scalar, ignoring an
// application tag.
func resolvedTag(node *yaml.Node) string {
	if customTag(node) == "" {
		return node.ShortTag()
	}

	plain := *node
	plain.Tag = ""

	return plain.ShortTag()
}

type primitiveSerializer struct{}

func (primitiveSerializer) Encode(_ *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	text, tag, err := primitive.Format(v)
	if err != nil {
		return nil, &ConstructionError{Type: v.Type(), Reason: err.Error()}
	}

	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	if tag == primitive.TagStr && text == Tombstone {
		node.Style = yaml.DoubleQuotedStyle
	}

	return node, nil
}

func (primitiveSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if node.Kind != yaml.ScalarNode {
		return ctx.mismatch(node, dst.Type().String(), nil)
	}

	v, err := primitive.Parse(node.Value, resolvedTag(node), dst.Type(), ctx.s.conversions)
	if err != nil {
		return ctx.mismatch(node, dst.Type().String(), err)
	}

	dst.Set(v)

	return nil
}

type objectSerializer struct {
	desc *reflection.TypeDescriptor
}

func (s objectSerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, m := range s.desc.Members {
		item := yamlpath.Member(m.Name)

		value, err := ctx.EncodeAt(item, m.Get(v), m.Style)
		if err != nil {
			return nil, err
		}

		node.Content = append(node.Content, keyNode(override.AppendPostfix(m.Name, ctx.Override(item))), value)
	}

	return node, nil
}

func (s objectSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if node.Kind != yaml.MappingNode {
		return ctx.mismatch(node, s.desc.Type.String(), nil)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name, t := override.SplitPostfix(key.Value)

		m, aliased, ok := s.desc.Member(name)
		if !ok {
			ctx.unknownMember(name, s.desc, key.Line)
			continue
		}

		if aliased {
			ctx.alias(diagnostic.CodeMemberAlias, key.Line, "member %q of %s is now %q", name, s.desc.Type, m.Name)
		}

		item := yamlpath.Member(m.Name)
		ctx.SetOverride(item, t)

		if err := ctx.DecodeAt(item, value, m.Get(dst), m.Style); err != nil {
			return err
		}
	}

	return nil
}

type pointerSerializer struct {
	style reflection.DataStyle
}

func (s pointerSerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	if v.IsNil() {
		return nullNode(), nil
	}

	leave, err := ctx.enter(v)
	if err != nil {
		return nil, err
	}
	defer leave()
	defer ctx.detach()()

	return ctx.Encode(v.Elem(), s.style)
}

func (s pointerSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if dst.IsNil() {
		v, err := ctx.Construct(dst.Type().Elem())
		if err != nil {
			return err
		}

		dst.Set(v.Addr())
	}

	defer ctx.detach()()

	return ctx.Decode(node, dst.Elem(), s.style)
}

type interfaceSerializer struct {
	iface reflect.Type
	style reflection.DataStyle
}

func (s interfaceSerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	if v.IsNil() {
		return nullNode(), nil
	}

	inner := v.Elem()

	node, err := ctx.Encode(inner, s.style)
	if err != nil {
		return nil, err
	}

	if tag, ok := ctx.s.types.TagOf(inner.Type()); ok && !isNull(node) {
		node.Tag = tag
	}

	return node, nil
}

func (s interfaceSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	tag := customTag(node)
	if tag == "" {
		if s.iface.NumMethod() != 0 {
			return &ConstructionError{Type: s.iface, Reason: fmt.Sprintf("value at %s has no type tag", ctx.path)}
		}

		v, err := s.decodeNatural(ctx, node)
		if err != nil {
			return err
		}

		if v.IsValid() {
			dst.Set(v)
		} else {
			dst.SetZero()
		}

		return nil
	}

	t, aliased, ok := ctx.s.types.TypeOf(tag)
	if !ok {
		return &ConstructionError{Type: s.iface, Reason: "unknown tag " + tag}
	}

	if aliased {
		ctx.alias(diagnostic.CodeTypeAlias, node.Line, "tag %s is a former name of %s", tag, t)
	}

	usePointer := reflect.PointerTo(t).Implements(s.iface)
	if !usePointer && !t.Implements(s.iface) {
		return ctx.mismatch(node, s.iface.String(), fmt.Errorf("%s does not implement it", t))
	}

	v, err := ctx.Construct(t)
	if err != nil {
		return err
	}

	if err := ctx.Decode(node, v, s.style); err != nil {
		return err
	}

	if usePointer {
		dst.Set(v.Addr())
	} else {
		dst.Set(v)
	}

	return nil
}

// decodeNatural reads an untagged node into the Go value yaml.v3 would
// produce for an any target. Identified mappings become slices.
func (s interfaceSerializer) decodeNatural(ctx *DecodeContext, node *yaml.Node) (reflect.Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		v := primitive.Natural(node.Value, resolvedTag(node))
		if v == nil {
			return reflect.Value{}, nil
		}

		return reflect.ValueOf(v), nil
	case yaml.SequenceNode:
		out := reflect.MakeSlice(reflect.TypeFor[[]any](), len(node.Content), len(node.Content))

		for i, child := range node.Content {
			if err := ctx.DecodeAt(yamlpath.Index(i), child, out.Index(i), reflection.StyleAny); err != nil {
				return reflect.Value{}, err
			}
		}

		return out, nil
	case yaml.MappingNode:
		if isItemMapping(node) {
			return s.decodeItems(ctx, node)
		}

		out := reflect.MakeMapWithSize(reflect.TypeFor[map[string]any](), len(node.Content)/2)
		identified := len(node.Content) > 0 && allDictionaryKeys(node)
		ids := collection.IdsOf(out.Interface())

		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value

			var itemID itemid.ID

			if identified {
				ik, _, _ := ParseDictionaryKey(key)
				if IsTombstone(node.Content[i+1]) {
					ids.MarkAsDeleted(ik.ID)
					continue
				}

				key, itemID = ik.Key, ik.ID
			}

			elem := reflect.New(anyType).Elem()

			if err := ctx.DecodeAt(yamlpath.Index(key), node.Content[i+1], elem, reflection.StyleAny); err != nil {
				return reflect.Value{}, err
			}

			out.SetMapIndex(reflect.ValueOf(key), elem)

			if identified {
				ids.Set(key, itemID)
			}
		}

		return out, nil
	default:
		return reflect.Value{}, ctx.mismatch(node, "value", nil)
	}
}

func (s interfaceSerializer) decodeItems(ctx *DecodeContext, node *yaml.Node) (reflect.Value, error) {
	out := reflect.MakeSlice(reflect.TypeFor[[]any](), 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		value := node.Content[i+1]
		if IsTombstone(value) {
			continue
		}

		id, _, _ := ParseItemKey(node.Content[i].Value)
		elem := reflect.New(anyType).Elem()

		if err := ctx.DecodeAt(yamlpath.ItemID(id), value, elem, reflection.StyleAny); err != nil {
			return reflect.Value{}, err
		}

		out = reflect.Append(out, elem)
	}

	return out, nil
}

// isItemMapping reports whether every key of a non-empty mapping is an item
// key.
func isItemMapping(node *yaml.Node) bool {
	if len(node.Content) == 0 {
		return false
	}

	for i := 0; i < len(node.Content); i += 2 {
		if _, _, ok := ParseItemKey(node.Content[i].Value); !ok {
			return false
		}
	}

	return true
}

type arraySerializer struct {
	desc    *reflection.TypeDescriptor
	compact bool
}

func (s arraySerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if s.compact {
		node.Style = yaml.FlowStyle
	}

	for i := range v.Len() {
		elem, err := ctx.EncodeAt(yamlpath.Index(i), v.Index(i), reflection.StyleAny)
		if err != nil {
			return nil, err
		}

		node.Content = append(node.Content, elem)
	}

	return node, nil
}

func (s arraySerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if node.Kind != yaml.SequenceNode {
		return ctx.mismatch(node, s.desc.Type.String(), nil)
	}

	if len(node.Content) > dst.Len() {
		return ctx.mismatch(node, s.desc.Type.String(), fmt.Errorf("%d items do not fit", len(node.Content)))
	}

	for i := range dst.Len() {
		if i >= len(node.Content) {
			dst.Index(i).SetZero()
			continue
		}

		if err := ctx.DecodeAt(yamlpath.Index(i), node.Content[i], dst.Index(i), reflection.StyleAny); err != nil {
			return err
		}
	}

	return nil
}

// marshalerSerializer hands values that implement yaml.Marshaler and
// yaml.Unmarshaler to yaml.v3.
type marshalerSerializer struct{}

func (marshalerSerializer) Encode(_ *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)

	var node yaml.Node
	if err := node.Encode(ptr.Interface()); err != nil {
		return nil, fmt.Errorf("yamlasset: marshal %s: %w", v.Type(), err)
	}

	return &node, nil
}

func (marshalerSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if err := node.Decode(dst.Addr().Interface()); err != nil {
		return ctx.mismatch(node, dst.Type().String(), err)
	}

	return nil
}
