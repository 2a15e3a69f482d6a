package yamlasset

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/collection"
	"assetyaml/internal/diagnostic"
	"assetyaml/internal/override"
	"assetyaml/internal/reflection"
	"assetyaml/internal/suggest"
	"assetyaml/internal/yamlpath"
)

// Defaulter is implemented by types that set default member values on
// freshly constructed instances, before the document is read into them.
type Defaulter interface {
	SetDefaults()
}

var defaulterType = reflect.TypeFor[Defaulter]()

type visit struct {
	ptr uintptr
	t   reflect.Type
}

// entryScope is the map entry whose value is being written or read.
// Containers stored inline in that value take their registry from the map
// entry, since they have no address of their own.
type entryScope struct {
	m     reflect.Value
	key   any
	depth int
}

// registry returns the registry of the slice or array v found at path.
func (e *entryScope) registry(path yamlpath.Path, v reflect.Value) *collection.Identifiers {
	if e != nil {
		rel := yamlpath.New(path.Items()[e.depth:]...)
		if ids, ok := collection.EntryIdsOfValue(e.m, e.key, rel.Key()); ok {
			return ids
		}
	}

	return registryOf(v)
}

// EncodeContext carries the state of one write.
type EncodeContext struct {
	s         *Serializer
	path      yamlpath.Path
	overrides *override.Map
	visiting  map[visit]struct{}
	entry     *entryScope
}

func newEncodeContext(s *Serializer, overrides *override.Map) *EncodeContext {
	if overrides == nil {
		overrides = override.NewMap()
	}

	return &EncodeContext{s: s, overrides: overrides, visiting: make(map[visit]struct{})}
}

// Serializer returns the serializer running the write.
func (c *EncodeContext) Serializer() *Serializer { return c.s }

// Path returns a copy of the path of the value being written.
func (c *EncodeContext) Path() yamlpath.Path { return c.path.Clone() }

// Override returns the override type of the child item of the current path.
func (c *EncodeContext) Override(item yamlpath.Item) override.Type {
	t, _ := c.overrides.Get(c.path.With(item))
	return t
}

// Encode converts v, written with the given member style, to a node.
func (c *EncodeContext) Encode(v reflect.Value, style reflection.DataStyle) (*yaml.Node, error) {
	if !v.IsValid() {
		return nullNode(), nil
	}

	desc := c.s.descriptors.Find(v.Type())
	if desc.Err != nil {
		return nil, &ConstructionError{Type: v.Type(), Reason: desc.Err.Error()}
	}

	ts, ok := c.s.find(Site{Desc: desc, Style: reflection.Resolve(style, desc.Style)})
	if !ok {
		return nil, &ConstructionError{Type: v.Type(), Reason: "no serializer for " + desc.Kind.String() + " types"}
	}

	return ts.Encode(c, v)
}

// EncodeAt encodes v as the child item of the current path.
func (c *EncodeContext) EncodeAt(item yamlpath.Item, v reflect.Value, style reflection.DataStyle) (*yaml.Node, error) {
	saved := c.path
	c.path = c.path.With(item)

	defer func() { c.path = saved }()

	return c.Encode(v, style)
}

// registry returns the registry of the slice or array v at the current path.
func (c *EncodeContext) registry(v reflect.Value) *collection.Identifiers {
	return c.entry.registry(c.path, v)
}

// EncodeEntry encodes the value stored under key in the map m as the child
// item of the current path.
func (c *EncodeContext) EncodeEntry(item yamlpath.Item, m, key, v reflect.Value, style reflection.DataStyle) (*yaml.Node, error) {
	saved := c.entry
	c.entry = &entryScope{m: m, key: key.Interface(), depth: c.path.Len() + 1}

	defer func() { c.entry = saved }()

	return c.EncodeAt(item, v, style)
}

// detach leaves the current map entry, for values stored outside of it.
func (c *EncodeContext) detach() func() {
	saved := c.entry
	c.entry = nil

	return func() { c.entry = saved }
}

// enter guards against reference cycles through pointers and maps.
func (c *EncodeContext) enter(v reflect.Value) (func(), error) {
	key := visit{ptr: v.Pointer(), t: v.Type()}
	if _, ok := c.visiting[key]; ok {
		return nil, fmt.Errorf("%w at %s", ErrReferenceCycle, c.path)
	}

	c.visiting[key] = struct{}{}

	return func() { delete(c.visiting, key) }, nil
}

// DecodeContext carries the state of one read.
type DecodeContext struct {
	s      *Serializer
	path   yamlpath.Path
	result *Result
	entry  *entryScope
}

func newDecodeContext(s *Serializer) *DecodeContext {
	return &DecodeContext{s: s, result: &Result{Overrides: override.NewMap()}}
}

// Serializer returns the serializer running the read.
func (c *DecodeContext) Serializer() *Serializer { return c.s }

// Path returns a copy of the path of the value being read.
func (c *DecodeContext) Path() yamlpath.Path { return c.path.Clone() }

// Decode reads node into dst, which must be settable.
func (c *DecodeContext) Decode(node *yaml.Node, dst reflect.Value, style reflection.DataStyle) error {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	if isNull(node) && customTag(node) == "" {
		dst.SetZero()
		return nil
	}

	desc := c.s.descriptors.Find(dst.Type())
	if desc.Err != nil {
		return &ConstructionError{Type: dst.Type(), Reason: desc.Err.Error()}
	}

	ts, ok := c.s.find(Site{Desc: desc, Style: reflection.Resolve(style, desc.Style)})
	if !ok {
		return &ConstructionError{Type: dst.Type(), Reason: "no serializer for " + desc.Kind.String() + " types"}
	}

	return ts.Decode(c, node, dst)
}

// DecodeAt decodes node into dst as the child item of the current path.
func (c *DecodeContext) DecodeAt(item yamlpath.Item, node *yaml.Node, dst reflect.Value, style reflection.DataStyle) error {
	saved := c.path
	c.path = c.path.With(item)

	defer func() { c.path = saved }()

	return c.Decode(node, dst, style)
}

// registry returns the registry of the slice or array v at the current path.
func (c *DecodeContext) registry(v reflect.Value) *collection.Identifiers {
	return c.entry.registry(c.path, v)
}

// DecodeEntry decodes node into dst, the value to be stored under key in the
// map m, as the child item of the current path.
func (c *DecodeContext) DecodeEntry(item yamlpath.Item, node *yaml.Node, m, key, dst reflect.Value, style reflection.DataStyle) error {
	saved := c.entry
	c.entry = &entryScope{m: m, key: key.Interface(), depth: c.path.Len() + 1}

	defer func() { c.entry = saved }()

	return c.DecodeAt(item, node, dst, style)
}

// detach leaves the current map entry, for values stored outside of it.
func (c *DecodeContext) detach() func() {
	saved := c.entry
	c.entry = nil

	return func() { c.entry = saved }
}

// SetOverride records an override for the child item of the current path.
func (c *DecodeContext) SetOverride(item yamlpath.Item, t override.Type) {
	if t != override.Base {
		c.result.Overrides.Set(c.path.With(item), t)
	}
}

// Construct returns a new addressable value of t with its defaults set.
func (c *DecodeContext) Construct(t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128, reflect.Invalid:
		return reflect.Value{}, &ConstructionError{Type: t, Reason: "kind " + t.Kind().String() + " has no document form"}
	}

	v := reflect.New(t)
	if t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(defaulterType) {
		v.Interface().(Defaulter).SetDefaults()
	}

	return v.Elem(), nil
}

// initialize sets the defaults of a zero slot that is decoded in place.
func (c *DecodeContext) initialize(slot reflect.Value) {
	if !slot.CanAddr() || slot.Kind() == reflect.Interface {
		return
	}

	if d, ok := slot.Addr().Interface().(Defaulter); ok {
		d.SetDefaults()
	}
}

func (c *DecodeContext) mismatch(node *yaml.Node, expected string, err error) error {
	return &TypeMismatchError{Path: c.Path(), Expected: expected, Got: kindName(node), Line: node.Line, Err: err}
}

func (c *DecodeContext) report(severity diagnostic.DiagnosticSeverity, code string, line int, suggestions []string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	path := c.path.String()

	c.result.Diagnostics.Add(diagnostic.Diagnostic{
		Severity:    severity,
		Code:        code,
		Message:     msg,
		Path:        path,
		Line:        line,
		Suggestions: suggestions,
	})

	level := slog.LevelWarn
	if severity == diagnostic.DiagnosticInfo {
		level = slog.LevelInfo
	}

	c.s.logger.Log(context.Background(), level, msg, "code", code, "path", path, "line", line)
}

// alias marks the document as written in a former syntax.
func (c *DecodeContext) alias(code string, line int, format string, args ...any) {
	c.result.AliasOccurred = true
	c.report(diagnostic.DiagnosticInfo, code, line, nil, format, args...)
}

func (c *DecodeContext) warn(code string, line int, format string, args ...any) {
	c.report(diagnostic.DiagnosticWarning, code, line, nil, format, args...)
}

func (c *DecodeContext) unknownMember(name string, desc *reflection.TypeDescriptor, line int) {
	suggestions := suggest.Suggest(name, desc.MemberNames(), 3)
	c.report(diagnostic.DiagnosticWarning, diagnostic.CodeUnknownMember, line, suggestions,
		"%s has no member %q", desc.Type, name)
}
