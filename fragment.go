package conveyor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// content is the read side shared by fragments and references: lazy line reading,
// optional substitution and the accumulated set of discovered variables.
// Discovered variables accumulate for the lifetime of the value and are never
// invalidated by later content changes.
type content struct {
	src       string // file the bytes are read from
	translate bool
	resolver  Resolver
	vars      map[string]struct{}
}

func newContent(src string, opts []PartOption) content {
	c := content{src: src, vars: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *content) clone() content {
	out := *c
	out.vars = maps.Clone(c.vars)
	return out
}

func (c *content) resolve() Resolver {
	if c.resolver == nil {
		return EnvResolver
	}
	return c.resolver
}

func (c *content) remember(names []string) {
	for _, n := range names {
		c.vars[n] = struct{}{}
	}
}

// Configure applies options to an already constructed part.
func (c *content) Configure(opts ...PartOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// SetTranslate toggles substitution in Lines.
func (c *content) SetTranslate(translate bool) { c.translate = translate }

// Translate reports whether Lines substitutes tokens.
func (c *content) Translate() bool { return c.translate }

// Lines yields the content line by line, each line keeping its trailing newline.
// Every call reopens the source. With translate on, each line is substituted
// and the tokens seen are added to the discovered variables.
func (c *content) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(c.src)
		if err != nil {
			yield("", fmt.Errorf("conveyor: read %s: %w", c.src, err))
			return
		}
		defer f.Close()
		br := bufio.NewReader(f)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				if c.translate {
					var names []string
					line, names = Substitute(line, c.resolve())
					c.remember(names)
				}
				if !yield(line, nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", fmt.Errorf("conveyor: read %s: %w", c.src, err))
				}
				return
			}
		}
	}
}

// ScanVariables reads the raw content once, adds every token to the discovered
// variables and returns the whole discovered set sorted.
func (c *content) ScanVariables() ([]string, error) {
	f, err := os.Open(c.src)
	if err != nil {
		return nil, fmt.Errorf("conveyor: scan %s: %w", c.src, err)
	}
	defer f.Close()
	names, err := ScanVariables(f)
	if err != nil {
		return nil, fmt.Errorf("conveyor: scan %s: %w", c.src, err)
	}
	c.remember(names)
	return c.Variables(), nil
}

// Variables returns the discovered variables sorted, without reading the content.
func (c *content) Variables() []string {
	return slices.Sorted(maps.Keys(c.vars))
}

// SubstitutionMap returns token name -> value for every discovered variable the resolver knows.
// When nothing has been discovered yet the content is scanned first.
func (c *content) SubstitutionMap() (map[string]string, error) {
	if len(c.vars) == 0 {
		if _, err := c.ScanVariables(); err != nil {
			return nil, err
		}
	}
	r := c.resolve()
	subs := make(map[string]string)
	for name := range c.vars {
		if v, ok := r.Lookup(name); ok {
			subs[name] = v
		}
	}
	return subs, nil
}

// Fragment is the canonical content of one named part in the registry.
// Its name is always the final segment of its path.
type Fragment struct {
	content
	section Section
	name    string
}

// NewFragment returns the fragment stored at path in the given section.
func NewFragment(section Section, path string, opts ...PartOption) *Fragment {
	return &Fragment{
		content: newContent(path, opts),
		section: section,
		name:    filepath.Base(path),
	}
}

// Name returns the fragment name.
func (f *Fragment) Name() string { return f.name }

// Path returns the location of the canonical content.
func (f *Fragment) Path() string { return f.src }

// Section returns the section the fragment belongs to.
func (f *Fragment) Section() Section { return f.section }

// Kind returns KindCanonical.
func (f *Fragment) Kind() Kind { return KindCanonical }

// Rename moves the content to newName in the same directory, keeping the bytes as they are.
// An existing entry at the target is never overwritten. References to the old path are not touched.
func (f *Fragment) Rename(newName string) error {
	if err := ValidateName(newName); err != nil {
		return &PartError{Op: "rename", Section: f.section, Name: f.name, Err: err}
	}
	newPath := filepath.Join(filepath.Dir(f.src), newName)
	if _, err := os.Lstat(newPath); err == nil {
		return &PartError{Op: "rename", Section: f.section, Name: f.name,
			Err: fmt.Errorf("%w: %s already exists", ErrIO, newPath)}
	}
	if err := os.Rename(f.src, newPath); err != nil {
		return &PartError{Op: "rename", Section: f.section, Name: f.name, Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	f.src = newPath
	f.name = newName
	return nil
}
