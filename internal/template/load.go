package template

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed templates.json
var defaultTemplates []byte

// Format identifies a template file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported template file extension: %q", filepath.Ext(path))
	}
}

// LoadFile reads and validates a template set from disk.
func LoadFile(path string) (Set, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates %s: %w", path, err)
	}
	set, err := Parse(raw, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes raw bytes in the given format and validates the result.
func Parse(raw []byte, format Format) (Set, error) {
	set := Set{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(raw, &set)
	case FormatYAML:
		err = yaml.Unmarshal(raw, &set)
	case FormatTOML:
		err = toml.Unmarshal(raw, &set)
	default:
		return nil, fmt.Errorf("unsupported template format: %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no templates defined")
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Default returns the built-in template set.
func Default() Set {
	set, err := Parse(defaultTemplates, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded templates are invalid: %v", err))
	}
	return set
}

// Load returns the set at path, or the built-in set when path is empty.
func Load(path string) (Set, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
