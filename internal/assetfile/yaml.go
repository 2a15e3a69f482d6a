package assetfile

import (
	"io"
	"reflect"

	"assetyaml/internal/override"
	"assetyaml/internal/yamlasset"
)

// DefaultYAMLExtensions are the extensions the default registry reads as
// YAML assets.
var DefaultYAMLExtensions = []string{".yaml", ".yml", ".asset"}

// YAMLSerializer stores assets as YAML documents.
type YAMLSerializer struct {
	s *yamlasset.Serializer
}

// NewYAMLSerializer wraps s. A nil s uses yamlasset.Default.
func NewYAMLSerializer(s *yamlasset.Serializer) *YAMLSerializer {
	return &YAMLSerializer{s: s}
}

func (y *YAMLSerializer) serializer() *yamlasset.Serializer {
	if y.s == nil {
		return yamlasset.Default()
	}

	return y.s
}

// Load implements AssetSerializer.
func (y *YAMLSerializer) Load(r io.Reader, _ string, opts LoadOptions) (*LoadResult, error) {
	s := y.serializer()

	res, err := s.Deserialize(r, opts.Expected)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = s.Logger()
	}

	return &LoadResult{
		Asset:         res.Value,
		Logger:        logger,
		AliasOccurred: res.AliasOccurred,
		Overrides:     res.Overrides,
		Diagnostics:   res.Diagnostics,
	}, nil
}

// Save implements AssetSerializer.
func (y *YAMLSerializer) Save(w io.Writer, value any, overrides *override.Map) error {
	return y.serializer().Serialize(w, value, overrides)
}

// RegisterYAMLAsset binds a document tag and a file extension to the type of
// sample.
func RegisterYAMLAsset(tag, ext string, sample any, aliases ...string) {
	yamlasset.RegisterType(tag, sample, aliases...)
	RegisterExtension(reflect.TypeOf(sample), ext)
}
