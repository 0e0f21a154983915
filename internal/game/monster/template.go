// Package monster provides monster template definitions and per-map lookup.
package monster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spawn is a monster placement within a map.
type Spawn struct {
	Map string  `yaml:"map"`
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Z   float64 `yaml:"z"`
}

// Template defines a monster archetype loaded from YAML.
type Template struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Level  int     `yaml:"level"`
	MaxHP  int     `yaml:"max_hp"`
	Spawns []Spawn `yaml:"spawns"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, and every spawn names a map; returns an error on the first
// violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("monster template %q: max_hp must be >= 1", t.ID)
	}
	for i, s := range t.Spawns {
		if s.Map == "" {
			return fmt.Errorf("monster template %q: spawn %d must name a map", t.ID, i)
		}
	}
	return nil
}

// LoadTemplates reads and validates every *.yaml template in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the parsed templates or a non-nil error on the
// first unreadable or invalid file.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster template dir: %w", err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading monster template %s: %w", path, err)
		}

		var tmpl Template
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("parsing monster template %s: %w", path, err)
		}
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("validating monster template %s: %w", path, err)
		}
		templates = append(templates, &tmpl)
	}
	return templates, nil
}
