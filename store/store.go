package store

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

// Store is the set of blueprints under one templates directory, keyed by id.
type Store struct {
	dir        string
	bpOpts     []conveyor.BlueprintOption
	logger     *zap.Logger
	blueprints map[string]*conveyor.Blueprint
}

// Option configures a Store.
type Option func(*Store)

// WithBlueprintOptions sets options for every blueprint the store loads or creates.
func WithBlueprintOptions(opts ...conveyor.BlueprintOption) Option {
	return func(s *Store) { s.bpOpts = append(s.bpOpts, opts...) }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over dir. Nothing is read until Load.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:        dir,
		logger:     zap.NewNop(),
		blueprints: make(map[string]*conveyor.Blueprint),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the templates directory as given to New, or its resolved absolute form after Load.
func (s *Store) Dir() string { return s.dir }

// Load reads every blueprint directory, sorted by id. Any failing blueprint aborts
// the load and leaves the store unchanged.
func (s *Store) Load() error {
	root, err := filepath.Abs(s.dir)
	if err == nil {
		root, err = filepath.EvalSymlinks(root)
	}
	if err != nil {
		return fmt.Errorf("%w: templates directory %s: %w", conveyor.ErrNotFound, s.dir, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: templates directory %s: %w", conveyor.ErrNotFound, s.dir, err)
		}
		return fmt.Errorf("%w: templates directory %s: %w", conveyor.ErrIO, s.dir, err)
	}
	blueprints := make(map[string]*conveyor.Blueprint, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		bp := conveyor.NewBlueprint(e.Name(), filepath.Join(root, e.Name()), s.bpOpts...)
		if err := bp.Load(); err != nil {
			return err
		}
		blueprints[bp.ID()] = bp
		s.logger.Debug("template loaded", zap.String("id", bp.ID()), zap.Int("parts", bp.Len()))
	}
	s.dir = root
	s.blueprints = blueprints
	return nil
}

// Get returns the blueprint id, or an ErrNotFound PartError.
func (s *Store) Get(id string) (*conveyor.Blueprint, error) {
	bp, ok := s.blueprints[id]
	if !ok {
		return nil, &conveyor.PartError{Op: "get", Blueprint: id, Err: conveyor.ErrNotFound}
	}
	return bp, nil
}

// New returns an empty, unregistered blueprint for id. Call Init to scaffold it and Put to register it.
func (s *Store) New(id string) (*conveyor.Blueprint, error) {
	if err := conveyor.ValidateName(id); err != nil {
		return nil, err
	}
	return conveyor.NewBlueprint(id, filepath.Join(s.dir, id), s.bpOpts...), nil
}

// Put registers bp under its id, replacing any previous entry.
func (s *Store) Put(bp *conveyor.Blueprint) {
	s.blueprints[bp.ID()] = bp
}

// IDs returns all blueprint ids sorted.
func (s *Store) IDs() []string {
	return slices.Sorted(maps.Keys(s.blueprints))
}

// Blueprints returns all blueprints sorted by id.
func (s *Store) Blueprints() []*conveyor.Blueprint {
	ids := s.IDs()
	out := make([]*conveyor.Blueprint, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.blueprints[id])
	}
	return out
}

// SetTranslateAll switches translate mode on every reference of every blueprint.
func (s *Store) SetTranslateAll(translate bool) {
	for _, bp := range s.blueprints {
		bp.Configure(conveyor.WithTranslate(translate))
	}
}
