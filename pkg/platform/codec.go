package platform

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/lanemap/pkg/mapping"
)

// Format is a serialization format for platform mapping files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unrecognized platform file extension: %s", path)
}

// Decode reads a platform mapping source in the given format.
func Decode(r io.Reader, format Format) (*Source, error) {
	var src Source
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&src); err != nil {
			return nil, fmt.Errorf("parsing platform json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&src); err != nil {
			return nil, fmt.Errorf("parsing platform yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return &src, nil
}

// EncodeSource writes src in the given format.
func EncodeSource(w io.Writer, src *Source, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(src)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(src); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// Encode writes m in the platform mapping source shape.
func Encode(w io.Writer, m *mapping.Mapping, format Format) error {
	return EncodeSource(w, FromMapping(m), format)
}

// Parse decodes and builds a mapping in one step.
func Parse(r io.Reader, format Format) (*mapping.Mapping, error) {
	src, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return src.Build()
}
