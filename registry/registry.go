package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/skosovsky/conveyor"

	"go.uber.org/zap"
)

// Registry holds every canonical fragment under one parts directory.
// Not safe for concurrent mutation; one process owns a parts tree at a time.
type Registry struct {
	dir       string
	blacklist map[string]struct{}
	partOpts  []conveyor.PartOption
	logger    *zap.Logger
	parts     map[conveyor.Section]map[string]*conveyor.Fragment
}

// New creates a Registry that reads fragments from dir. Nothing is read until Load.
func New(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:       dir,
		blacklist: make(map[string]struct{}),
		logger:    zap.NewNop(),
		parts:     make(map[conveyor.Section]map[string]*conveyor.Fragment),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures a Registry.
type Option func(*Registry)

// WithBlacklist adds names that are skipped in every section.
func WithBlacklist(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			r.blacklist[n] = struct{}{}
		}
	}
}

// WithPartOptions sets options applied to every loaded fragment (resolver, translate mode).
func WithPartOptions(opts ...conveyor.PartOption) Option {
	return func(r *Registry) { r.partOpts = append(r.partOpts, opts...) }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Dir returns the parts directory as given to New, or its resolved absolute form after Load.
func (r *Registry) Dir() string { return r.dir }

// Load reads every section directory, sorted by name. A missing section directory fails
// with ErrNotFound and leaves the registry unchanged.
func (r *Registry) Load() error {
	root, err := filepath.Abs(r.dir)
	if err == nil {
		root, err = filepath.EvalSymlinks(root)
	}
	if err != nil {
		return fmt.Errorf("%w: parts directory %s: %w", conveyor.ErrNotFound, r.dir, err)
	}
	parts := make(map[conveyor.Section]map[string]*conveyor.Fragment)
	for _, s := range conveyor.Sections() {
		dir := filepath.Join(root, string(s))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &conveyor.PartError{Op: "load", Section: s, Err: fmt.Errorf("%w: %w", conveyor.ErrNotFound, err)}
			}
			return &conveyor.PartError{Op: "load", Section: s, Err: fmt.Errorf("%w: %w", conveyor.ErrIO, err)}
		}
		parts[s] = make(map[string]*conveyor.Fragment, len(entries))
		for _, e := range entries {
			if _, skip := r.blacklist[e.Name()]; skip {
				continue
			}
			parts[s][e.Name()] = conveyor.NewFragment(s, filepath.Join(dir, e.Name()), r.partOpts...)
		}
		r.logger.Debug("section loaded", zap.String("section", string(s)), zap.Int("parts", len(parts[s])))
	}
	r.dir = root
	r.parts = parts
	return nil
}

// Get returns the fragment name in section, or an ErrLookup PartError.
func (r *Registry) Get(section conveyor.Section, name string) (*conveyor.Fragment, error) {
	if !section.Valid() {
		return nil, &conveyor.PartError{Op: "get", Err: fmt.Errorf("%w: %q", conveyor.ErrUnknownSection, section)}
	}
	f, ok := r.parts[section][name]
	if !ok {
		return nil, &conveyor.PartError{Op: "get", Section: section, Name: name, Err: conveyor.ErrLookup}
	}
	return f, nil
}

// Names returns the fragment names of section sorted.
func (r *Registry) Names(section conveyor.Section) []string {
	return slices.Sorted(maps.Keys(r.parts[section]))
}

// Parts returns the fragments of section sorted by name.
func (r *Registry) Parts(section conveyor.Section) []*conveyor.Fragment {
	names := r.Names(section)
	out := make([]*conveyor.Fragment, 0, len(names))
	for _, n := range names {
		out = append(out, r.parts[section][n])
	}
	return out
}

// SetTranslateAll switches translate mode on every loaded fragment.
func (r *Registry) SetTranslateAll(translate bool) {
	for _, parts := range r.parts {
		for _, f := range parts {
			f.SetTranslate(translate)
		}
	}
}

// Rename renames the canonical fragment and re-keys it. Blueprints are not touched.
func (r *Registry) Rename(section conveyor.Section, oldName, newName string) (*conveyor.Fragment, error) {
	f, err := r.Get(section, oldName)
	if err != nil {
		return nil, err
	}
	if _, taken := r.parts[section][newName]; taken {
		return nil, &conveyor.PartError{Op: "rename", Section: section, Name: oldName,
			Err: fmt.Errorf("%w: %q already registered", conveyor.ErrIO, newName)}
	}
	if err := f.Rename(newName); err != nil {
		return nil, err
	}
	delete(r.parts[section], oldName)
	r.parts[section][newName] = f
	r.logger.Info("part renamed", zap.String("section", string(section)),
		zap.String("from", oldName), zap.String("to", newName))
	return f, nil
}
