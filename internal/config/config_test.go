package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 4, c.Indent)
	assert.Equal(t, []string{".yaml", ".yml", ".asset"}, c.Extensions)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.NoError(t, c.Validate())

	c.Extensions[0] = ".changed"
	assert.Equal(t, ".yaml", Default().Extensions[0], "defaults are not shared")
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
indent = 2
extensions = ["Scene", ".prefab"]
log_level = "debug"
log_format = "json"
`))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Indent)
	assert.Equal(t, []string{".scene", ".prefab"}, c.Extensions)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 100, c.WatchDebounceMillis)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "unknown key", data: "colour = 1\n", wantErr: "missing in the target struct"},
		{name: "syntax", data: "indent = \n", wantErr: "failed to parse config TOML"},
		{name: "indent", data: "indent = 12\n", wantErr: "indent must be between 2 and 9"},
		{name: "log level", data: "log_level = \"loud\"\n", wantErr: "invalid log_level"},
		{name: "log format", data: "log_format = \"xml\"\n", wantErr: "invalid log_format"},
		{name: "empty extension", data: "extensions = [\" \"]\n", wantErr: "extensions must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	c := Default()
	c.Indent = 1
	c.LogFormat = "xml"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indent")
	assert.Contains(t, err.Error(), "log_format")
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)

	path := filepath.Join(t.TempDir(), "assetyaml.toml")
	require.NoError(t, os.WriteFile(path, []byte("indent = 3\n"), 0o644))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Indent)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()

	data, err := Marshal(&c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level = 'info'")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c, *back)
}
