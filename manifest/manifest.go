// Package manifest reads and writes template manifests: a YAML description of a
// template id and the parts it references, section by section.
package manifest

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/skosovsky/conveyor"

	"gopkg.in/yaml.v3"
)

// Manifest describes a template by the names of its parts.
type Manifest struct {
	ID          string                        `yaml:"id"`
	Description string                        `yaml:"description,omitempty"`
	Parts       map[conveyor.Section][]string `yaml:"parts,omitempty"`
}

// ParseBytes parses and validates a YAML manifest.
func ParseBytes(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", conveyor.ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("manifest: read file: %w", err)
	}
	return ParseBytes(data)
}

// ParseFS reads and parses a manifest from fs.FS (e.g. embed.FS).
func ParseFS(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("manifest: read fs: %w", err)
	}
	return ParseBytes(data)
}

// Validate checks the id, every section and every part name.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", conveyor.ErrInvalidManifest)
	}
	if err := conveyor.ValidateName(m.ID); err != nil {
		return fmt.Errorf("%w: id: %w", conveyor.ErrInvalidManifest, err)
	}
	for s, names := range m.Parts {
		if !s.Valid() {
			return fmt.Errorf("%w: %w: %q", conveyor.ErrInvalidManifest, conveyor.ErrUnknownSection, s)
		}
		for _, n := range names {
			if err := conveyor.ValidateName(n); err != nil {
				return fmt.Errorf("%w: %s: %w", conveyor.ErrInvalidManifest, s, err)
			}
		}
	}
	return nil
}

// Selection returns the parts in section order, skipping empty sections.
func (m *Manifest) Selection() conveyor.Selection {
	var sel conveyor.Selection
	for _, s := range conveyor.Sections() {
		if names := m.Parts[s]; len(names) > 0 {
			sel = append(sel, conveyor.SelectionEntry{Section: s, Names: names})
		}
	}
	return sel
}

// FromBlueprint describes the references currently attached to bp.
func FromBlueprint(bp *conveyor.Blueprint) *Manifest {
	m := &Manifest{ID: bp.ID(), Parts: make(map[conveyor.Section][]string)}
	for _, s := range conveyor.Sections() {
		for _, ref := range bp.Parts(s) {
			m.Parts[s] = append(m.Parts[s], ref.Name())
		}
	}
	return m
}

// Write encodes m as YAML.
func (m *Manifest) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	return enc.Close()
}
