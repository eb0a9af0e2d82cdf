package conveyor

import (
	"fmt"
	"slices"
)

// Section is one of the fixed content categories of a kickstart document.
type Section string

// Sections in rendering order.
const (
	Commands   Section = "commands"
	Packages   Section = "packages"
	Pre        Section = "pre"
	Post       Section = "post"
	PostHeader Section = "post.header"
)

var sections = [...]Section{Commands, Packages, Pre, Post, PostHeader}

// Sections returns all sections in their fixed order.
func Sections() []Section {
	return slices.Clone(sections[:])
}

// Valid reports whether s is one of the fixed sections.
func (s Section) Valid() bool {
	return slices.Contains(sections[:], s)
}

// ParseSection converts a section name to a Section.
func ParseSection(name string) (Section, error) {
	s := Section(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return s, nil
}
