package syllabus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a structured syllabus catalog from a JSON or YAML file.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading syllabus file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		catalog, err := NormalizeStructured(normalizeYAML(v))
		if err != nil {
			return nil, err
		}
		slog.Debug("syllabus loaded", "path", path, "subjects", len(catalog))
		return catalog, nil
	default:
		catalog, err := ParseStructuredJSON(data)
		if err != nil {
			return nil, err
		}
		slog.Debug("syllabus loaded", "path", path, "subjects", len(catalog))
		return catalog, nil
	}
}

// normalizeYAML converts yaml.v3's map[string]any / []any values into the
// same shape encoding/json produces, so NormalizeStructured handles both.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	case int:
		return float64(t)
	default:
		return v
	}
}
