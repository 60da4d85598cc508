// Package template describes project templates: the folders created under a
// project root and the folders created inside every shot.
package template

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Template is the declarative folder layout for one kind of project.
type Template struct {
	Root          []string `json:"root" yaml:"root" toml:"root"`
	ShotStructure []string `json:"shotStructure" yaml:"shotStructure" toml:"shotStructure"`
}

// Set maps template names to templates.
type Set map[string]Template

// Names returns the template names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named template.
func (s Set) Get(name string) (*Template, bool) {
	t, ok := s[name]
	if !ok {
		return nil, false
	}
	return &t, true
}

// Validate checks every template in the set.
func (s Set) Validate() error {
	var errs []error
	for _, name := range s.Names() {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("template with empty name"))
			continue
		}
		t := s[name]
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("template %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate reports every entry of Root and ShotStructure that is not a single
// path segment. Invalid entries are never dropped.
func (t *Template) Validate() error {
	var errs []error
	for i, name := range t.Root {
		if err := ValidateName(name); err != nil {
			errs = append(errs, fmt.Errorf("root[%d]: %w", i, err))
		}
	}
	for i, name := range t.ShotStructure {
		if err := ValidateName(name); err != nil {
			errs = append(errs, fmt.Errorf("shotStructure[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateName checks that name is exactly one path segment: not empty, not
// "." or "..", without separators and not absolute.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty name")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid name: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name must not contain path separators: %q", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("name must not contain NUL: %q", name)
	}
	if filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("absolute names are not allowed: %q", name)
	}
	return nil
}
