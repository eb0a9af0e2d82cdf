package conveyor

import (
	"fmt"
	"iter"
	"path/filepath"
)

// Part is the read surface shared by canonical fragments and references.
type Part interface {
	Name() string
	Path() string
	Section() Section
	Kind() Kind
	Lines() iter.Seq2[string, error]
	ScanVariables() ([]string, error)
	SubstitutionMap() (map[string]string, error)
}

var (
	_ Part = (*Fragment)(nil)
	_ Part = (*Reference)(nil)
)

// Kind tags what backs a part: canonical content, a durable link or nothing at all.
type Kind int

// Part kinds.
const (
	KindCanonical Kind = iota
	KindPersisted
	KindVirtual
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCanonical:
		return "canonical"
	case KindPersisted:
		return "persisted"
	case KindVirtual:
		return "virtual"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reference is a blueprint-local handle on a canonical fragment.
// Content is always read from the origin, so persisted and virtual references
// answer Lines/ScanVariables identically. Only persisted references touch the filesystem.
type Reference struct {
	content
	section  Section
	name     string
	location string
	kind     Kind
	linker   Linker
}

// NewReference returns a reference named after the final segment of location, pointing at origin.
// Kind must be KindPersisted or KindVirtual; anything else is treated as virtual.
func NewReference(section Section, location, origin string, kind Kind, linker Linker, opts ...PartOption) *Reference {
	if kind != KindPersisted {
		kind = KindVirtual
	}
	if linker == nil {
		linker = SymlinkLinker{}
	}
	return &Reference{
		content:  newContent(origin, opts),
		section:  section,
		name:     filepath.Base(location),
		location: location,
		kind:     kind,
		linker:   linker,
	}
}

// Name returns the reference name.
func (r *Reference) Name() string { return r.name }

// Path returns where the reference lives inside its blueprint.
func (r *Reference) Path() string { return r.location }

// Origin returns the location of the canonical fragment.
func (r *Reference) Origin() string { return r.src }

// Section returns the section of the reference.
func (r *Reference) Section() Section { return r.section }

// Kind returns KindPersisted or KindVirtual.
func (r *Reference) Kind() Kind { return r.kind }

// Materialize creates the durable link at Path pointing at Origin.
// It is a no-op for virtual references.
func (r *Reference) Materialize() error {
	if r.kind == KindVirtual {
		return nil
	}
	if err := r.linker.Link(r.src, r.location); err != nil {
		return fmt.Errorf("%w: link %s: %w", ErrIO, r.location, err)
	}
	return nil
}

// Rename moves the reference to newName. A persisted reference removes its old link
// and links the new name to the same origin; a virtual one only changes in memory.
// If the old link is removed but the new one cannot be created, the reference is left dangling.
func (r *Reference) Rename(newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	newLocation := filepath.Join(filepath.Dir(r.location), newName)
	if r.kind == KindPersisted {
		if err := r.linker.Unlink(r.location); err != nil {
			return fmt.Errorf("%w: unlink %s: %w", ErrIO, r.location, err)
		}
		if err := r.linker.Link(r.src, newLocation); err != nil {
			return fmt.Errorf("%w: link %s: %w", ErrIO, newLocation, err)
		}
	}
	r.name = newName
	r.location = newLocation
	return nil
}

// SetOrigin repoints the reference at newOrigin, recreating the link for persisted references.
func (r *Reference) SetOrigin(newOrigin string) error {
	if r.kind == KindPersisted {
		if err := r.linker.Unlink(r.location); err != nil {
			return fmt.Errorf("%w: unlink %s: %w", ErrIO, r.location, err)
		}
		if err := r.linker.Link(newOrigin, r.location); err != nil {
			return fmt.Errorf("%w: link %s: %w", ErrIO, r.location, err)
		}
	}
	r.src = newOrigin
	return nil
}

func (r *Reference) clone() *Reference {
	out := *r
	out.content = r.content.clone()
	return &out
}
