package assetfile

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"github.com/ipfs/go-cid"

	"assetyaml/internal/diagnostic"
	"assetyaml/internal/override"
)

// PartReferenceFixer is implemented by assets whose parts refer to each
// other by id. FixupPartReferences runs once the whole asset is read.
type PartReferenceFixer interface {
	FixupPartReferences()
}

// LoadOptions tune a load.
type LoadOptions struct {
	// Expected is the asset type, or nil to take it from the document tag.
	Expected reflect.Type
	Logger   *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.Default()
}

// LoadResult is a loaded asset with what was learned while reading it.
type LoadResult struct {
	Asset  any
	Logger *slog.Logger
	// AliasOccurred reports legacy syntax. The asset should be saved again.
	AliasOccurred bool
	Overrides     *override.Map
	Diagnostics   diagnostic.Diagnostics
	// ContentID is the id of the bytes read.
	ContentID cid.Cid
}

// Load reads an asset from r. The extension of filePath selects the
// serializer.
func (reg *Registry) Load(r io.Reader, filePath string, opts LoadOptions) (*LoadResult, error) {
	s, err := reg.FindSerializer(filepath.Ext(filePath))
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("assetfile: read %s: %w", filePath, err)
	}

	res, err := s.Load(bytes.NewReader(data), filePath, opts)
	if err != nil {
		return nil, fmt.Errorf("assetfile: load %s: %w", filePath, err)
	}

	if res.ContentID, err = ContentID(data); err != nil {
		return nil, fmt.Errorf("assetfile: content id of %s: %w", filePath, err)
	}

	if res.Overrides == nil {
		res.Overrides = override.NewMap()
	}

	if res.Logger == nil {
		res.Logger = opts.logger()
	}

	if fixer, ok := res.Asset.(PartReferenceFixer); ok {
		fixer.FixupPartReferences()
	}

	res.Logger.Debug("asset loaded", "path", filePath, "cid", res.ContentID.String(), "alias", res.AliasOccurred)

	return res, nil
}

// LoadFile reads the asset stored at path.
func (reg *Registry) LoadFile(path string, opts LoadOptions) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assetfile: %w", err)
	}
	defer f.Close()

	return reg.Load(f, path, opts)
}

// Load reads an asset with the default registry.
func Load(r io.Reader, filePath string, opts LoadOptions) (*LoadResult, error) {
	return Default.Load(r, filePath, opts)
}

// LoadFile reads the asset at path with the default registry.
func LoadFile(path string, opts LoadOptions) (*LoadResult, error) {
	return Default.LoadFile(path, opts)
}

// LoadAs reads the asset at path as a T with the default registry. T is a
// pointer to the asset type, an interface it implements, or a map type.
// Struct, slice and array types are refused: registries are attached to the
// loaded value, so a copy of it would be saved with fresh ids.
func LoadAs[T any](path string, opts LoadOptions) (T, *LoadResult, error) {
	var zero T

	opts.Expected = reflect.TypeFor[T]()

	switch opts.Expected.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
	default:
		return zero, nil, fmt.Errorf("assetfile: cannot load %s by value, item ids would be lost; use *%s", opts.Expected, opts.Expected)
	}

	res, err := LoadFile(path, opts)
	if err != nil {
		return zero, nil, err
	}

	if asset, ok := res.Asset.(T); ok {
		return asset, res, nil
	}

	return zero, res, fmt.Errorf("assetfile: %s holds a %T, not a %s", path, res.Asset, opts.Expected)
}
