package assetfile

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"sync"

	"assetyaml/internal/override"
)

// AssetSerializer reads and writes the assets of one file format.
type AssetSerializer interface {
	Load(r io.Reader, filePath string, opts LoadOptions) (*LoadResult, error)
	Save(w io.Writer, value any, overrides *override.Map) error
}

// SerializerFactory hands out the serializer of the extensions it claims.
type SerializerFactory interface {
	// TryCreate is given a lower-cased extension with its leading dot.
	TryCreate(ext string) (AssetSerializer, bool)
}

// SerializerNotFoundError is returned when no factory claims an extension,
// or when a value is saved whose type has no registered extension.
type SerializerNotFoundError struct {
	Extension string
	Type      reflect.Type // set when the extension is unknown
}

func (e *SerializerNotFoundError) Error() string {
	if e.Extension == "" && e.Type != nil {
		return fmt.Sprintf("assetfile: no extension registered for %s", e.Type)
	}

	return fmt.Sprintf("assetfile: no serializer for extension %q", e.Extension)
}

// Registry is an append-only list of serializer factories.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories []SerializerFactory
}

// Default is the registry used by the package-level functions.
var Default = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewExtensionFactory(SourceCodeSerializer{}, ".txt"))
	r.Register(NewExtensionFactory(NewYAMLSerializer(nil), DefaultYAMLExtensions...))

	RegisterExtension(reflect.TypeFor[SourceCodeAsset](), ".txt")

	return r
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds f. A factory already registered is not added twice.
func (r *Registry) Register(f SerializerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.factories, f) {
		return
	}

	r.factories = append(r.factories, f)
}

// FindSerializer returns the serializer for ext. The factory registered
// last wins when several claim the extension.
func (r *Registry) FindSerializer(ext string) (AssetSerializer, error) {
	ext = normalizeExtension(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range slices.Backward(r.factories) {
		if s, ok := f.TryCreate(ext); ok {
			return s, nil
		}
	}

	return nil, &SerializerNotFoundError{Extension: ext}
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

// ExtensionFactory claims a fixed set of extensions.
type ExtensionFactory struct {
	Extensions []string
	Serializer AssetSerializer
}

// NewExtensionFactory returns a factory handing s out for exts.
func NewExtensionFactory(s AssetSerializer, exts ...string) *ExtensionFactory {
	f := &ExtensionFactory{Serializer: s}
	for _, ext := range exts {
		f.Extensions = append(f.Extensions, normalizeExtension(ext))
	}

	return f
}

// TryCreate implements SerializerFactory.
func (f *ExtensionFactory) TryCreate(ext string) (AssetSerializer, bool) {
	if !slices.Contains(f.Extensions, ext) {
		return nil, false
	}

	return f.Serializer, true
}

var (
	extMu      sync.RWMutex
	extensions = map[reflect.Type]string{}
)

// RegisterExtension sets the extension files of asset type t are saved with.
func RegisterExtension(t reflect.Type, ext string) {
	extMu.Lock()
	defer extMu.Unlock()

	extensions[baseType(t)] = normalizeExtension(ext)
}

// DefaultExtension returns the extension registered for t.
func DefaultExtension(t reflect.Type) (string, bool) {
	extMu.RLock()
	defer extMu.RUnlock()

	ext, ok := extensions[baseType(t)]

	return ext, ok
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
