package conveyor

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// Blueprint is a named set of references partitioned by section.
// Attach and Detach change only the in-memory view; AddPart and Init write to disk.
// Every key of a section map equals the name of the reference stored under it.
type Blueprint struct {
	id       string
	path     string
	linker   Linker
	partOpts []PartOption
	parts    map[Section]map[string]*Reference
}

// NewBlueprint returns an empty blueprint rooted at path. Nothing is read or written.
func NewBlueprint(id, path string, opts ...BlueprintOption) *Blueprint {
	b := &Blueprint{
		id:     id,
		path:   path,
		linker: SymlinkLinker{},
		parts:  emptyParts(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func emptyParts() map[Section]map[string]*Reference {
	parts := make(map[Section]map[string]*Reference, len(sections))
	for _, s := range sections {
		parts[s] = make(map[string]*Reference)
	}
	return parts
}

// ID returns the blueprint id.
func (b *Blueprint) ID() string { return b.id }

// Path returns the blueprint directory.
func (b *Blueprint) Path() string { return b.path }

// Init creates every section directory under Path. Existing directories are fine.
func (b *Blueprint) Init() error {
	for _, s := range sections {
		if err := os.MkdirAll(filepath.Join(b.path, string(s)), 0o755); err != nil {
			return &PartError{Op: "init", Blueprint: b.id, Section: s, Err: fmt.Errorf("%w: %w", ErrIO, err)}
		}
	}
	return nil
}

// Load replaces the in-memory references with the links found on disk.
// A missing section directory fails with ErrNotFound, a link whose origin does not
// exist fails with ErrLookup. On error the previous state is kept.
func (b *Blueprint) Load() error {
	parts := emptyParts()
	for _, s := range sections {
		dir := filepath.Join(b.path, string(s))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &PartError{Op: "load", Blueprint: b.id, Section: s, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
			}
			return &PartError{Op: "load", Blueprint: b.id, Section: s, Err: fmt.Errorf("%w: %w", ErrIO, err)}
		}
		for _, e := range entries {
			location := filepath.Join(dir, e.Name())
			origin, err := b.linker.Resolve(location)
			if err != nil {
				return &PartError{Op: "load", Blueprint: b.id, Section: s, Name: e.Name(),
					Err: fmt.Errorf("%w: dangling link: %w", ErrLookup, err)}
			}
			parts[s][e.Name()] = NewReference(s, location, origin, KindPersisted, b.linker, b.partOpts...)
		}
	}
	b.parts = parts
	return nil
}

func (b *Blueprint) sectionParts(op string, section Section) (map[string]*Reference, error) {
	parts, ok := b.parts[section]
	if !ok {
		return nil, &PartError{Op: op, Blueprint: b.id, Err: fmt.Errorf("%w: %q", ErrUnknownSection, section)}
	}
	return parts, nil
}

// Attach registers an in-memory reference of the given kind to frag under section.
// The reference inherits the fragment's translate mode and resolver. Nothing is written.
func (b *Blueprint) Attach(section Section, frag *Fragment, kind Kind) (*Reference, error) {
	parts, err := b.sectionParts("attach", section)
	if err != nil {
		return nil, err
	}
	location := filepath.Join(b.path, string(section), frag.Name())
	opts := append([]PartOption{WithTranslate(frag.translate), WithResolver(frag.resolver)}, b.partOpts...)
	ref := NewReference(section, location, frag.Path(), kind, b.linker, opts...)
	parts[ref.Name()] = ref
	return ref, nil
}

// AddPart attaches frag as a persisted reference and materializes its link.
// When the link cannot be created the reference stays attached in memory.
func (b *Blueprint) AddPart(section Section, frag *Fragment) (*Reference, error) {
	ref, err := b.Attach(section, frag, KindPersisted)
	if err != nil {
		return nil, err
	}
	if err := ref.Materialize(); err != nil {
		return ref, &PartError{Op: "add", Blueprint: b.id, Section: section, Name: ref.Name(), Err: err}
	}
	return ref, nil
}

// Detach drops a reference from memory only. Detaching a name that is not attached fails with ErrNotFound.
func (b *Blueprint) Detach(section Section, name string) error {
	parts, err := b.sectionParts("detach", section)
	if err != nil {
		return err
	}
	if _, ok := parts[name]; !ok {
		return &PartError{Op: "detach", Blueprint: b.id, Section: section, Name: name, Err: ErrNotFound}
	}
	delete(parts, name)
	return nil
}

// Part returns the reference named name in section.
func (b *Blueprint) Part(section Section, name string) (*Reference, bool) {
	ref, ok := b.parts[section][name]
	return ref, ok
}

// Parts returns the references of section sorted by name.
func (b *Blueprint) Parts(section Section) []*Reference {
	parts := b.parts[section]
	out := make([]*Reference, 0, len(parts))
	for _, name := range slices.Sorted(maps.Keys(parts)) {
		out = append(out, parts[name])
	}
	return out
}

// Len returns the number of references across all sections.
func (b *Blueprint) Len() int {
	n := 0
	for _, parts := range b.parts {
		n += len(parts)
	}
	return n
}

// RenamePart renames the reference oldName to newName and repoints it at newOrigin.
// The map key follows the reference name even when repointing fails afterwards.
func (b *Blueprint) RenamePart(section Section, oldName, newName, newOrigin string) error {
	parts, err := b.sectionParts("rename", section)
	if err != nil {
		return err
	}
	ref, ok := parts[oldName]
	if !ok {
		return &PartError{Op: "rename", Blueprint: b.id, Section: section, Name: oldName, Err: ErrNotFound}
	}
	if _, taken := parts[newName]; taken {
		return &PartError{Op: "rename", Blueprint: b.id, Section: section, Name: oldName,
			Err: fmt.Errorf("%w: %q already attached", ErrIO, newName)}
	}
	if err := ref.Rename(newName); err != nil {
		return &PartError{Op: "rename", Blueprint: b.id, Section: section, Name: oldName, Err: err}
	}
	delete(parts, oldName)
	parts[newName] = ref
	if err := ref.SetOrigin(newOrigin); err != nil {
		return &PartError{Op: "repoint", Blueprint: b.id, Section: section, Name: newName, Err: err}
	}
	return nil
}

// Configure applies options to every attached reference.
func (b *Blueprint) Configure(opts ...PartOption) {
	for _, parts := range b.parts {
		for _, ref := range parts {
			ref.Configure(opts...)
		}
	}
}

// WorkingCopy returns an in-memory copy whose references are independent of b.
// Renders attach, detach and accumulate variables on the copy only.
func (b *Blueprint) WorkingCopy() *Blueprint {
	out := &Blueprint{
		id:       b.id,
		path:     b.path,
		linker:   b.linker,
		partOpts: slices.Clone(b.partOpts),
		parts:    emptyParts(),
	}
	for s, parts := range b.parts {
		for name, ref := range parts {
			out.parts[s][name] = ref.clone()
		}
	}
	return out
}
