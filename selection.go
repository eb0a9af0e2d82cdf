package conveyor

import (
	"fmt"
	"strings"
)

// SelectionEntry names parts of one section.
type SelectionEntry struct {
	Section Section
	Names   []string
}

// Selection is an ordered list of (section, names) pairs, written as
// "section1:name1,name2;section2:name3". Order is preserved as given.
type Selection []SelectionEntry

// ParseSelection parses the selection grammar. Empty input yields an empty selection.
// Empty chunks between ';' are skipped; a section given twice has its names merged.
func ParseSelection(s string) (Selection, error) {
	var out Selection
	for chunk := range strings.SplitSeq(s, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		secName, list, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q has no section prefix", ErrInvalidSelection, chunk)
		}
		section, err := ParseSection(strings.TrimSpace(secName))
		if err != nil {
			return nil, err
		}
		var names []string
		for name := range strings.SplitSeq(list, ",") {
			name = strings.TrimSpace(name)
			if err := ValidateName(name); err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSelection, chunk, err)
			}
			names = append(names, name)
		}
		out = out.add(section, names)
	}
	return out, nil
}

func (sel Selection) add(section Section, names []string) Selection {
	for i := range sel {
		if sel[i].Section == section {
			sel[i].Names = append(sel[i].Names, names...)
			return sel
		}
	}
	return append(sel, SelectionEntry{Section: section, Names: names})
}

// Names returns the names selected for section.
func (sel Selection) Names(section Section) []string {
	for _, e := range sel {
		if e.Section == section {
			return e.Names
		}
	}
	return nil
}

// String renders the selection back in its grammar.
func (sel Selection) String() string {
	chunks := make([]string, 0, len(sel))
	for _, e := range sel {
		chunks = append(chunks, string(e.Section)+":"+strings.Join(e.Names, ","))
	}
	return strings.Join(chunks, ";")
}
