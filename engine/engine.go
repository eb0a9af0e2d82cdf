package engine

import (
	"fmt"
	"path/filepath"

	"github.com/skosovsky/conveyor"
	"github.com/skosovsky/conveyor/registry"
	"github.com/skosovsky/conveyor/store"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Directory names under the base directory.
const (
	PartsDir     = "parts"
	TemplatesDir = "templates"
)

// Engine owns one Registry and one Store.
type Engine struct {
	parts     *registry.Registry
	templates *store.Store
	logger    *zap.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	registryOpts []registry.Option
	storeOpts    []store.Option
	logger       *zap.Logger
}

// WithRegistryOptions passes options to the parts registry.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(o *options) { o.registryOpts = append(o.registryOpts, opts...) }
}

// WithStoreOptions passes options to the template store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithLogger sets the logger for the engine, the registry and the store.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wraps an already loaded registry and store.
func New(parts *registry.Registry, templates *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{parts: parts, templates: templates, logger: logger}
}

// Open loads <baseDir>/parts and <baseDir>/templates and verifies every reference
// against the registry. Any failure aborts.
func Open(baseDir string, opts ...Option) (*Engine, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	parts := registry.New(filepath.Join(baseDir, PartsDir),
		append([]registry.Option{registry.WithLogger(o.logger)}, o.registryOpts...)...)
	if err := parts.Load(); err != nil {
		return nil, err
	}
	templates := store.New(filepath.Join(baseDir, TemplatesDir),
		append([]store.Option{store.WithLogger(o.logger)}, o.storeOpts...)...)
	if err := templates.Load(); err != nil {
		return nil, err
	}
	e := New(parts, templates, o.logger)
	if err := e.Verify(); err != nil {
		return nil, err
	}
	return e, nil
}

// Verify checks that every template reference points at the registry part of the same
// section and name. A link to an unregistered, ignored or foreign file fails with ErrLookup.
func (e *Engine) Verify() error {
	for _, bp := range e.templates.Blueprints() {
		for _, s := range conveyor.Sections() {
			for _, ref := range bp.Parts(s) {
				if err := e.verifyRef(bp.ID(), ref); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Engine) verifyRef(id string, ref *conveyor.Reference) error {
	frag, err := e.parts.Get(ref.Section(), ref.Name())
	if err != nil {
		return &conveyor.PartError{Op: "load", Blueprint: id, Section: ref.Section(), Name: ref.Name(), Err: conveyor.ErrLookup}
	}
	want, err := filepath.EvalSymlinks(frag.Path())
	if err != nil {
		want = frag.Path()
	}
	if ref.Origin() != want {
		return &conveyor.PartError{Op: "load", Blueprint: id, Section: ref.Section(), Name: ref.Name(),
			Err: fmt.Errorf("%w: links to %s, not %s", conveyor.ErrLookup, ref.Origin(), want)}
	}
	return nil
}

// Registry returns the parts registry.
func (e *Engine) Registry() *registry.Registry { return e.parts }

// Store returns the template store.
func (e *Engine) Store() *store.Store { return e.templates }

// RenamePart renames the canonical part and then every template reference named oldName
// in section, repointing it at the renamed part. Propagation is best-effort: every template
// is attempted and the failures are returned together as an *conveyor.IntegrityError.
func (e *Engine) RenamePart(section conveyor.Section, oldName, newName string) error {
	frag, err := e.parts.Rename(section, oldName, newName)
	if err != nil {
		return err
	}
	var (
		failed []string
		errs   error
	)
	for _, bp := range e.templates.Blueprints() {
		if _, ok := bp.Part(section, oldName); !ok {
			continue
		}
		if err := bp.RenamePart(section, oldName, newName, frag.Path()); err != nil {
			e.logger.Warn("rename propagation failed", zap.String("template", bp.ID()), zap.Error(err))
			failed = append(failed, bp.ID())
			errs = multierr.Append(errs, err)
			continue
		}
		e.logger.Info("template reference renamed", zap.String("template", bp.ID()),
			zap.String("section", string(section)), zap.String("from", oldName), zap.String("to", newName))
	}
	if len(failed) > 0 {
		return &conveyor.IntegrityError{Section: section, From: oldName, To: newName, Failed: failed, Err: errs}
	}
	return nil
}

// AddPart persists a reference to the registry part name into template id.
func (e *Engine) AddPart(id string, section conveyor.Section, name string) (*conveyor.Reference, error) {
	frag, err := e.parts.Get(section, name)
	if err != nil {
		return nil, err
	}
	bp, err := e.templates.Get(id)
	if err != nil {
		return nil, err
	}
	ref, err := bp.AddPart(section, frag)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("part added", zap.String("template", id), zap.String("section", string(section)),
		zap.String("name", name))
	return ref, nil
}

// AddParts adds names in order and stops at the first failure.
func (e *Engine) AddParts(id string, section conveyor.Section, names []string) error {
	for _, name := range names {
		if _, err := e.AddPart(id, section, name); err != nil {
			return err
		}
	}
	return nil
}

// Init scaffolds an empty template and registers it. For a known template it only
// makes sure the section directories exist.
func (e *Engine) Init(id string) (*conveyor.Blueprint, error) {
	if bp, err := e.templates.Get(id); err == nil {
		return bp, bp.Init()
	}
	bp, err := e.templates.New(id)
	if err != nil {
		return nil, err
	}
	if err := bp.Init(); err != nil {
		return nil, err
	}
	e.templates.Put(bp)
	e.logger.Info("template initialized", zap.String("template", id))
	return bp, nil
}

// Create scaffolds the new template id and adds every selected part.
// An id that is already taken fails with ErrIO; use AddParts to extend a template.
func (e *Engine) Create(id string, sel conveyor.Selection) (*conveyor.Blueprint, error) {
	if err := e.vacant("create", id); err != nil {
		return nil, err
	}
	bp, err := e.Init(id)
	if err != nil {
		return nil, err
	}
	for _, entry := range sel {
		if err := e.AddParts(id, entry.Section, entry.Names); err != nil {
			return bp, err
		}
	}
	return bp, nil
}

// Clone scaffolds the new template dst and adds every part referenced by src, resolved by name
// in the registry. An existing dst fails with ErrIO.
func (e *Engine) Clone(src, dst string) (*conveyor.Blueprint, error) {
	from, err := e.templates.Get(src)
	if err != nil {
		return nil, err
	}
	if err := e.vacant("clone", dst); err != nil {
		return nil, err
	}
	var sel conveyor.Selection
	for _, s := range conveyor.Sections() {
		var names []string
		for _, ref := range from.Parts(s) {
			names = append(names, ref.Name())
		}
		if len(names) > 0 {
			sel = append(sel, conveyor.SelectionEntry{Section: s, Names: names})
		}
	}
	return e.Create(dst, sel)
}

func (e *Engine) vacant(op, id string) error {
	if _, err := e.templates.Get(id); err == nil {
		return &conveyor.PartError{Op: op, Blueprint: id, Err: fmt.Errorf("%w: template already exists", conveyor.ErrIO)}
	}
	return nil
}
