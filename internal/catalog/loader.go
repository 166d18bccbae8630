package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// materialFile is one YAML document on disk: a collection of items for a
// single (type, level).
type materialFile struct {
	Type  ActivityType `yaml:"type"`
	Level int          `yaml:"level"`
	Items []Item       `yaml:"items"`
}

// LoadDir builds an in-memory catalog from a tree of material YAML files.
// Files that are not valid material documents are skipped with a warning.
func LoadDir(rootDir string) (*Memory, error) {
	m := NewMemory()

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return loadFile(m, path)
	})
	if err != nil {
		return nil, fmt.Errorf("loading materials: %w", err)
	}

	slog.Info("materials loaded", "items", m.Len(), "root", rootDir)
	return m, nil
}

func loadFile(m *Memory, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file materialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid material YAML", "path", path, "error", err)
		return nil
	}

	if !file.Type.Valid() || file.Type == TypeEmpty {
		return nil // Not a material file
	}

	for i, item := range file.Items {
		if item.ID == "" {
			slog.Warn("skipping material item without id", "path", path, "index", i)
			continue
		}
		item.Type = file.Type
		item.Level = file.Level
		if item.Position == 0 {
			item.Position = i + 1
		}
		m.Add(item)
	}
	return nil
}
