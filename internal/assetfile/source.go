package assetfile

import (
	"fmt"
	"io"
	"strings"

	"assetyaml/internal/override"
)

// SourceCodeAsset is an asset stored as raw text, such as a shader or a
// script.
type SourceCodeAsset struct {
	Text string
}

// SourceCodeSerializer stores a SourceCodeAsset as the file content itself.
type SourceCodeSerializer struct{}

// Load implements AssetSerializer.
func (SourceCodeSerializer) Load(r io.Reader, _ string, opts LoadOptions) (*LoadResult, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return nil, err
	}

	return &LoadResult{Asset: &SourceCodeAsset{Text: sb.String()}, Logger: opts.Logger}, nil
}

// Save implements AssetSerializer.
func (SourceCodeSerializer) Save(w io.Writer, value any, _ *override.Map) error {
	var text string

	switch v := value.(type) {
	case *SourceCodeAsset:
		text = v.Text
	case SourceCodeAsset:
		text = v.Text
	default:
		return fmt.Errorf("assetfile: %T is not a source code asset", value)
	}

	_, err := io.WriteString(w, text)

	return err
}
