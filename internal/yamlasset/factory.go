package yamlasset

import (
	"reflect"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/reflection"
)

// Site is what a factory knows about the place a value is written to or read
// from: the descriptor of its type and the style in effect.
type Site struct {
	Desc  *reflection.TypeDescriptor
	Style reflection.DataStyle
}

// Compact reports whether the value is written inline without item ids.
func (s Site) Compact() bool {
	return s.Style == reflection.StyleCompact
}

// TypeSerializer writes and reads the values of one site.
type TypeSerializer interface {
	Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error)
	// Decode reads node into dst, which is settable.
	Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error
}

// Factory creates serializers for the sites it handles.
type Factory interface {
	TryCreate(site Site) (TypeSerializer, bool)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(site Site) (TypeSerializer, bool)

// TryCreate calls f.
func (f FactoryFunc) TryCreate(site Site) (TypeSerializer, bool) { return f(site) }

// builtinFactories are ordered oldest first: the last one is asked first.
func builtinFactories() []Factory {
	return []Factory{
		FactoryFunc(func(site Site) (TypeSerializer, bool) {
			switch site.Desc.Kind {
			case reflection.KindPrimitive:
				return primitiveSerializer{}, true
			case reflection.KindObject:
				return objectSerializer{desc: site.Desc}, true
			case reflection.KindPointer:
				return pointerSerializer{style: site.Style}, true
			case reflection.KindInterface:
				return interfaceSerializer{iface: site.Desc.Type, style: site.Style}, true
			case reflection.KindArray:
				return arraySerializer{desc: site.Desc, compact: site.Compact()}, true
			default:
				return nil, false
			}
		}),
		FactoryFunc(func(site Site) (TypeSerializer, bool) {
			switch site.Desc.Kind {
			case reflection.KindCollection, reflection.KindDictionary:
				return plainSerializer{desc: site.Desc}, true
			default:
				return nil, false
			}
		}),
		FactoryFunc(func(site Site) (TypeSerializer, bool) {
			if site.Compact() {
				return nil, false
			}

			switch site.Desc.Kind {
			case reflection.KindCollection:
				return collectionWithIdsSerializer{desc: site.Desc}, true
			case reflection.KindDictionary:
				return dictionaryWithIdsSerializer{desc: site.Desc}, true
			default:
				return nil, false
			}
		}),
		FactoryFunc(func(site Site) (TypeSerializer, bool) {
			if !isYAMLMarshaler(site.Desc.Type) {
				return nil, false
			}

			return marshalerSerializer{}, true
		}),
	}
}

// IsIdentified reports whether values of t written with style use the
// identified form.
func IsIdentified(t reflect.Type, style reflection.DataStyle) bool {
	desc := reflection.Default.Find(t)
	if reflection.Resolve(style, desc.Style) == reflection.StyleCompact || isYAMLMarshaler(t) {
		return false
	}

	return desc.Kind == reflection.KindCollection || desc.Kind == reflection.KindDictionary
}
