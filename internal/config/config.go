// Package config loads the settings of the assetyaml command.
//
// Settings come from an optional TOML file; flags given on the command line
// override them. Missing settings take their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"assetyaml/internal/assetfile"
	"assetyaml/internal/yamlasset"
)

// Config holds the settings of one run.
type Config struct {
	// Indent is the number of spaces per nesting level of written documents.
	Indent int `toml:"indent"`
	// Extensions are the file extensions read as YAML assets.
	Extensions []string `toml:"extensions"`
	LogLevel   string   `toml:"log_level"`
	LogFormat  string   `toml:"log_format"`
	// WatchDebounceMillis groups file events arriving within this delay.
	WatchDebounceMillis int `toml:"watch_debounce_ms"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	c := Config{}
	applyDefaults(&c)

	return c
}

// Load reads the TOML file at path. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		c := Default()
		return &c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Parse decodes TOML settings, applies defaults and validates the result.
// Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	var c Config

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Marshal encodes c as TOML.
func Marshal(c *Config) ([]byte, error) {
	return toml.Marshal(c)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	if c.Indent == 0 {
		c.Indent = yamlasset.DefaultIndent
	}

	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(assetfile.DefaultYAMLExtensions)
	}

	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		c.Extensions[i] = ext
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	if c.WatchDebounceMillis == 0 {
		c.WatchDebounceMillis = 100
	}
}

// Validate returns every problem of c joined in one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Indent < 2 || c.Indent > 9 {
		errs = append(errs, fmt.Errorf("indent must be between 2 and 9, got %d", c.Indent))
	}

	for _, ext := range c.Extensions {
		if ext == "" || ext == "." {
			errs = append(errs, errors.New("extensions must not be empty"))
			break
		}
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %q: must be 'text' or 'json'", c.LogFormat))
	}

	if c.WatchDebounceMillis < 0 {
		errs = append(errs, fmt.Errorf("watch_debounce_ms must not be negative, got %d", c.WatchDebounceMillis))
	}

	return errors.Join(errs...)
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
}
