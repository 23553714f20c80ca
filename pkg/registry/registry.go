// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"homelead-workers/internal/models"
)

// LoadRegistry reads a registry file and validates it. Missing weights
// default to 1.0.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	for i := range reg.Collections {
		if reg.Collections[i].Weight == 0 {
			reg.Collections[i].Weight = 1.0
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// LoadOrDefault loads path when set, otherwise returns the compiled-in
// profiles.
func LoadOrDefault(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadRegistry(path)
}

// Save writes the registry as indented JSON.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks that every known collection is described exactly once
// with at least one keyword and one allowed field.
func (r *Registry) Validate() error {
	var problems []string
	seen := make(map[models.Collection]bool)

	for _, p := range r.Collections {
		c, ok := models.ParseCollection(p.Name)
		if !ok || string(c) != p.Name {
			problems = append(problems, fmt.Sprintf("unknown collection %q", p.Name))
			continue
		}
		if seen[c] {
			problems = append(problems, fmt.Sprintf("duplicate collection %q", p.Name))
		}
		seen[c] = true

		if len(p.PrimaryKeywords) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no primary keywords", p.Name))
		}
		if len(p.AllowedFields) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no allowed fields", p.Name))
		}
		if p.Weight < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative weight", p.Name))
		}
	}

	for _, c := range models.AllCollections {
		if !seen[c] {
			problems = append(problems, fmt.Sprintf("missing collection %q", c))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid registry: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Profile returns the profile for c.
func (r *Registry) Profile(c models.Collection) (CollectionProfile, bool) {
	for _, p := range r.Collections {
		if p.Name == string(c) {
			return p, true
		}
	}
	return CollectionProfile{}, false
}

// AllowedFields returns a copy of c's allow-list.
func (r *Registry) AllowedFields(c models.Collection) []string {
	p, ok := r.Profile(c)
	if !ok {
		return nil
	}
	return append([]string(nil), p.AllowedFields...)
}
