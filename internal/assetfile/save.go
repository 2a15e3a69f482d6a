package assetfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/ipfs/go-cid"

	"assetyaml/internal/override"
)

// Save writes value to w with the serializer of the extension registered
// for its type.
func (reg *Registry) Save(w io.Writer, value any, overrides *override.Map) error {
	t := reflect.TypeOf(value)

	ext, ok := DefaultExtension(t)
	if !ok {
		return &SerializerNotFoundError{Type: t}
	}

	s, err := reg.FindSerializer(ext)
	if err != nil {
		return err
	}

	return s.Save(w, value, overrides)
}

// SaveFile writes value to path through a temporary file renamed into
// place, creating missing directories. It returns the content id of the
// bytes written.
func (reg *Registry) SaveFile(path string, value any, overrides *override.Map) (cid.Cid, error) {
	s, err := reg.FindSerializer(filepath.Ext(path))
	if err != nil {
		return cid.Undef, err
	}

	var buf bytes.Buffer
	if err := s.Save(&buf, value, overrides); err != nil {
		return cid.Undef, fmt.Errorf("assetfile: save %s: %w", path, err)
	}

	if err := WriteFile(path, buf.Bytes()); err != nil {
		return cid.Undef, err
	}

	return ContentID(buf.Bytes())
}

// Save writes value with the default registry.
func Save(w io.Writer, value any, overrides *override.Map) error {
	return Default.Save(w, value, overrides)
}

// SaveFile writes value to path with the default registry.
func SaveFile(path string, value any, overrides *override.Map) (cid.Cid, error) {
	return Default.SaveFile(path, value, overrides)
}

// WriteFile replaces the file at path with data through a temporary file in
// the same directory, so readers never see a partial file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("assetfile: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("assetfile: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("assetfile: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("assetfile: write %s: %w", path, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("assetfile: sync %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("assetfile: close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("assetfile: %w", err)
	}

	committed = true

	return nil
}
