package assetfile

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetyaml/internal/collection"
	"assetyaml/internal/reflection"
	"assetyaml/internal/testkit"
	"assetyaml/internal/yamlasset"
)

type material struct {
	Name   string
	Layers []string
}

type scene struct {
	Name  string
	fixed bool
}

func (s *scene) FixupPartReferences() { s.fixed = true }

type kit struct {
	Items []string
}

func init() {
	RegisterYAMLAsset("AssetfileScene", ".asset", scene{})
	RegisterYAMLAsset("AssetfileKit", ".asset", kit{})
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	types := reflection.NewTypeRegistry()
	types.MustRegister("Material", reflect.TypeFor[material]())

	s := yamlasset.New(yamlasset.WithTypes(types), yamlasset.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	reg := NewRegistry()
	reg.Register(NewExtensionFactory(NewYAMLSerializer(s), DefaultYAMLExtensions...))
	reg.Register(NewExtensionFactory(SourceCodeSerializer{}, ".txt"))

	return reg
}

func TestSaveLoadFile(t *testing.T) {
	reg := newTestRegistry(t)
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "lamp.asset")

	m := &material{Name: "lamp", Layers: []string{"base", "glow"}}
	collection.IdsOf(&m.Layers).Set(0, testkit.ItemID(10))

	id, err := reg.SaveFile(path, m, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "!Material"))

	want, err := ContentID(data)
	require.NoError(t, err)
	assert.True(t, want.Equals(id))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file is left behind")

	res, err := reg.LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.False(t, res.AliasOccurred)
	assert.NotNil(t, res.Overrides)
	assert.NotNil(t, res.Logger)
	assert.True(t, res.ContentID.Equals(id))

	got, ok := res.Asset.(*material)
	require.True(t, ok)
	assert.Equal(t, m.Layers, got.Layers)

	layer, _ := collection.IdsOf(&got.Layers).Get(0)
	assert.Equal(t, testkit.ItemID(10), layer)

	again, err := reg.SaveFile(path, got, res.Overrides)
	require.NoError(t, err)
	assert.True(t, again.Equals(id), "an unchanged asset keeps its content id")
}

func TestLegacyFileIsFlagged(t *testing.T) {
	reg := newTestRegistry(t)
	path := filepath.Join(t.TempDir(), "old.yaml")
	require.NoError(t, os.WriteFile(path, []byte("!Material\nName: old\nLayers:\n    - a\n"), 0o644))

	res, err := reg.LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.True(t, res.AliasOccurred)
	assert.Equal(t, 1, collection.IdsOf(&res.Asset.(*material).Layers).Len())
}

func TestFindSerializer(t *testing.T) {
	reg := newTestRegistry(t)

	for _, ext := range []string{".yaml", ".YAML", "yml", ".asset"} {
		s, err := reg.FindSerializer(ext)
		require.NoError(t, err, ext)
		assert.IsType(t, &YAMLSerializer{}, s, ext)
	}

	_, err := reg.FindSerializer(".png")

	var notFound *SerializerNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, ".png", notFound.Extension)

	_, err = reg.LoadFile(filepath.Join(t.TempDir(), "image.png"), LoadOptions{})
	assert.ErrorAs(t, err, &notFound)
}

func TestLastRegisteredWins(t *testing.T) {
	reg := newTestRegistry(t)

	f := NewExtensionFactory(SourceCodeSerializer{}, ".yaml")
	reg.Register(f)
	reg.Register(f)
	assert.Len(t, reg.factories, 3)

	s, err := reg.FindSerializer(".yaml")
	require.NoError(t, err)
	assert.IsType(t, SourceCodeSerializer{}, s)
}

func TestContentID(t *testing.T) {
	id, err := ContentID(nil)
	require.NoError(t, err)
	assert.Equal(t, "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku", id.String())

	a, err := ContentID([]byte("a"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.String(), "bafkrei"))
	assert.False(t, a.Equals(id))
}

func TestSourceCode(t *testing.T) {
	reg := newTestRegistry(t)
	path := filepath.Join(t.TempDir(), "shader.txt")

	_, err := reg.SaveFile(path, &SourceCodeAsset{Text: "void main() {}\n"}, nil)
	require.NoError(t, err)

	res, err := reg.LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, &SourceCodeAsset{Text: "void main() {}\n"}, res.Asset)

	var buf bytes.Buffer
	require.NoError(t, reg.Save(&buf, SourceCodeAsset{Text: "x"}, nil))
	assert.Equal(t, "x", buf.String())

	var notFound *SerializerNotFoundError
	err = reg.Save(&buf, &material{}, nil)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, reflect.TypeFor[*material](), notFound.Type)

	assert.Error(t, SourceCodeSerializer{}.Save(&buf, 42, nil))
}

func TestLoadAsFixesPartReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.asset")

	_, err := SaveFile(path, &scene{Name: "level"}, nil)
	require.NoError(t, err)

	got, res, err := LoadAs[*scene](path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "level", got.Name)
	assert.True(t, got.fixed)
	assert.True(t, res.ContentID.Defined())

	_, _, err = LoadAs[scene](path, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use *assetfile.scene")

	_, _, err = LoadAs[*material](path, LoadOptions{})
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, &scene{Name: "x"}, nil))
	assert.Contains(t, buf.String(), "!AssetfileScene")
}

func TestLoadAsKeepsItemIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.asset")

	_, err := SaveFile(path, &kit{Items: []string{"a", "b"}}, nil)
	require.NoError(t, err)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, res, err := LoadAs[*kit](path, LoadOptions{})
	require.NoError(t, err)

	_, err = SaveFile(path, loaded, res.Overrides)
	require.NoError(t, err)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
