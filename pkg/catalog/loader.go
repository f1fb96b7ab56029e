package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	f, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return f, nil
}

// LoadFromBytes parses YAML catalog data from raw bytes.
func LoadFromBytes(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog data: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("no categories defined")
	}
	for i, c := range f.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category %d: missing name", i+1)
		}
	}
	return &f, nil
}
