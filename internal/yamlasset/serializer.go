package yamlasset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/diagnostic"
	"assetyaml/internal/override"
	"assetyaml/internal/reflection"
	"assetyaml/primitive"
)

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 4

// Types is the tag registry used by serializers created without WithTypes.
var Types = reflection.NewTypeRegistry()

// RegisterType binds a document tag to the type of sample in Types.
func RegisterType(tag string, sample any, aliases ...string) {
	Types.MustRegister(tag, reflect.TypeOf(sample), aliases...)
}

// Result is the outcome of a read.
type Result struct {
	// Value points to the decoded value.
	Value any
	// AliasOccurred reports legacy syntax: former member names or tags, or
	// collections written without item ids. The value should be saved again.
	AliasOccurred bool
	// Overrides holds the override annotations of the document. Never nil.
	Overrides *override.Map
	// Diagnostics lists the non-fatal anomalies met while reading.
	Diagnostics diagnostic.Diagnostics
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.indent = n
		}
	}
}

// WithLogger sets the logger receiving non-fatal anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Serializer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTypes sets the tag registry.
func WithTypes(types *reflection.TypeRegistry) Option {
	return func(s *Serializer) {
		if types != nil {
			s.types = types
		}
	}
}

// WithDescriptors sets the descriptor factory.
func WithDescriptors(f *reflection.Factory) Option {
	return func(s *Serializer) {
		if f != nil {
			s.descriptors = f
		}
	}
}

// WithConversions sets the scalar conversions tolerated when reading.
func WithConversions(c primitive.CategoryEnum) Option {
	return func(s *Serializer) {
		s.conversions = c
	}
}

// Serializer converts object graphs to and from YAML documents.
// It is safe for concurrent use.
type Serializer struct {
	indent      int
	logger      *slog.Logger
	types       *reflection.TypeRegistry
	descriptors *reflection.Factory
	conversions primitive.CategoryEnum

	mu        sync.RWMutex
	factories []Factory
}

// New returns a serializer with the built-in factories registered.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		indent:      DefaultIndent,
		logger:      slog.Default(),
		types:       Types,
		descriptors: reflection.Default,
		conversions: primitive.DefaultConversions,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.factories = builtinFactories()

	return s
}

var defaultSerializer = sync.OnceValue(func() *Serializer { return New() })

// Default returns the shared serializer with default options.
func Default() *Serializer {
	return defaultSerializer()
}

// Logger returns the logger of s.
func (s *Serializer) Logger() *slog.Logger { return s.logger }

// TypeRegistry returns the tag registry of s.
func (s *Serializer) TypeRegistry() *reflection.TypeRegistry { return s.types }

// Register adds a factory. Factories registered later are asked first.
func (s *Serializer) Register(f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.factories = append(s.factories, f)
}

func (s *Serializer) find(site Site) (TypeSerializer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range slices.Backward(s.factories) {
		if ts, ok := f.TryCreate(site); ok {
			return ts, true
		}
	}

	return nil, false
}

// EncodeNode converts value to a node tree. Pass a pointer so that item ids
// are kept with the collections of the value.
func (s *Serializer) EncodeNode(value any, overrides *override.Map) (*yaml.Node, error) {
	v := reflect.ValueOf(value)
	ctx := newEncodeContext(s, overrides)

	if v.IsValid() && v.Kind() != reflect.Pointer && v.Kind() != reflect.Map {
		s.logger.Debug("encoding a value that is not a pointer, item ids are not kept", "type", v.Type())
	}

	node, err := ctx.Encode(v, reflection.StyleAny)
	if err != nil {
		return nil, err
	}

	if v.IsValid() && !isNull(node) {
		if tag, ok := s.types.TagOf(v.Type()); ok {
			node.Tag = tag
		}
	}

	return node, nil
}

// Marshal returns the document of value.
func (s *Serializer) Marshal(value any, overrides *override.Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf, value, overrides); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Serialize writes the document of value to w. Output is deterministic for
// identical values with identical item ids.
func (s *Serializer) Serialize(w io.Writer, value any, overrides *override.Map) error {
	node, err := s.EncodeNode(value, overrides)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(s.indent)

	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("yamlasset: write: %w", err)
	}

	return enc.Close()
}

// Deserialize reads a document. expected may be nil when the document root
// carries a registered tag, or an interface type the tagged type implements.
func (s *Serializer) Deserialize(r io.Reader, expected reflect.Type) (*Result, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yamlasset: empty document")
		}

		return nil, fmt.Errorf("yamlasset: parse: %w", err)
	}

	return s.decodeRoot(&doc, expected, reflect.Value{})
}

// Unmarshal decodes data into target, which must be a non-nil pointer.
func (s *Serializer) Unmarshal(data []byte, target any) (*Result, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamlasset: parse: %w", err)
	}

	return s.DecodeNode(&doc, target)
}

// DecodeNode decodes node into target, which must be a non-nil pointer.
func (s *Serializer) DecodeNode(node *yaml.Node, target any) (*Result, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, &ConstructionError{Type: reflect.TypeOf(target), Reason: "target must be a non-nil pointer"}
	}

	return s.decodeRoot(node, v.Type().Elem(), v)
}

func (s *Serializer) decodeRoot(node *yaml.Node, expected reflect.Type, target reflect.Value) (*Result, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, fmt.Errorf("yamlasset: empty document")
		}

		node = node.Content[0]
	}

	if expected != nil {
		expected = baseOf(expected)
	}

	ctx := newDecodeContext(s)

	t, err := s.rootType(ctx, node, expected)
	if err != nil {
		return nil, err
	}

	if target.IsValid() && target.Type().Elem() == t {
		if err := ctx.Decode(node, target.Elem(), reflection.StyleAny); err != nil {
			return nil, err
		}

		ctx.result.Value = target.Interface()

		return ctx.result, nil
	}

	v, err := ctx.Construct(t)
	if err != nil {
		return nil, err
	}

	if err := ctx.Decode(node, v, reflection.StyleAny); err != nil {
		return nil, err
	}

	ptr := v.Addr()

	// An interface target receives the tagged type.
	if target.IsValid() {
		slot := target.Elem()
		if ptr.Type().AssignableTo(slot.Type()) {
			slot.Set(ptr)
		} else {
			slot.Set(v)
		}
	}

	ctx.result.Value = ptr.Interface()

	return ctx.result, nil
}

// rootType picks the type of the document root from its tag and the
// expected type.
func (s *Serializer) rootType(ctx *DecodeContext, node *yaml.Node, expected reflect.Type) (reflect.Type, error) {
	tag := customTag(node)
	if tag == "" {
		if expected == nil {
			return nil, &ConstructionError{Reason: "document has no type tag"}
		}

		return expected, nil
	}

	t, aliased, ok := s.types.TypeOf(tag)
	if !ok {
		if expected == nil || expected.Kind() == reflect.Interface {
			return nil, &ConstructionError{Type: expected, Reason: "unknown tag " + tag}
		}

		return expected, nil
	}

	if aliased {
		ctx.alias(diagnostic.CodeTypeAlias, node.Line, "tag %s is a former name of %s", tag, t)
	}

	switch {
	case expected == nil:
		return t, nil
	case expected.Kind() == reflect.Interface:
		if reflect.PointerTo(t).Implements(expected) || t.Implements(expected) {
			return t, nil
		}
	case baseOf(expected) == t:
		return expected, nil
	}

	return nil, &TypeMismatchError{Path: ctx.Path(), Expected: expected.String(), Got: tag, Line: node.Line}
}

func baseOf(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// customTag returns the application tag of node or "".
func customTag(node *yaml.Node) string {
	if len(node.Tag) > 1 && node.Tag[0] == '!' && node.Tag[1] != '!' {
		return node.Tag
	}

	return ""
}
