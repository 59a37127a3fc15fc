package blueprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write serializes a blueprint to an indented JSON file. The document
// shape is a stable contract with the rendering stage.
func Write(b *Blueprint, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create blueprint directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Read loads a blueprint back from disk.
func Read(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Blueprint
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode blueprint: %w", err)
	}
	return &b, nil
}

// SlugPath builds the output filename for a topic, e.g.
// "HTTP Caching" -> dir/http_caching_blueprint.json.
func SlugPath(dir, topic string) string {
	slug := strings.ToLower(topic)
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "/", "_")
	return filepath.Join(dir, slug+"_blueprint.json")
}
