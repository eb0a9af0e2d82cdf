package inspect

import (
	"context"
	"regexp"
	"runtime"
	"slices"

	"github.com/skosovsky/conveyor"
	"github.com/skosovsky/conveyor/registry"
	"github.com/skosovsky/conveyor/store"

	"golang.org/x/sync/errgroup"
)

// PartInfo describes one part as listed by lsparts or lstemplates.
type PartInfo struct {
	Section conveyor.Section `yaml:"section"`
	Name    string           `yaml:"name"`
	Vars    []string         `yaml:"vars,omitempty"`
}

// TemplateInfo describes one template. Parts, Unused and Vars are filled according to the Query.
type TemplateInfo struct {
	ID     string     `yaml:"id"`
	Parts  []PartInfo `yaml:"parts,omitempty"`
	Unused []PartInfo `yaml:"unused,omitempty"`
	Vars   []string   `yaml:"vars,omitempty"`
}

// Query selects what Templates reports.
type Query struct {
	Filter   *regexp.Regexp // keep ids matching anywhere; nil keeps all
	Parts    bool           // list the parts of every template
	Vars     bool           // list variables (per part with Parts, per template otherwise)
	AllParts bool           // with Parts, also list registry parts the template does not use
}

// Inspector answers listing queries over a registry and a store.
type Inspector struct {
	parts     *registry.Registry
	templates *store.Store
	scanner   *Scanner
	limit     int
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithScanner shares a Scanner between inspectors.
func WithScanner(s *Scanner) Option {
	return func(i *Inspector) {
		if s != nil {
			i.scanner = s
		}
	}
}

// WithConcurrency bounds the number of templates scanned at once. Default is GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.limit = n
		}
	}
}

// New returns an Inspector.
func New(parts *registry.Registry, templates *store.Store, opts ...Option) *Inspector {
	i := &Inspector{
		parts:     parts,
		templates: templates,
		scanner:   NewScanner(),
		limit:     runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Parts lists every registry part in section order, names sorted.
func (i *Inspector) Parts(withVars bool) ([]PartInfo, error) {
	var out []PartInfo
	for _, s := range conveyor.Sections() {
		for _, f := range i.parts.Parts(s) {
			info := PartInfo{Section: s, Name: f.Name()}
			if withVars {
				vars, err := i.scanner.Scan(f.Path())
				if err != nil {
					return nil, err
				}
				info.Vars = vars
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// Templates lists templates sorted by id. Templates are scanned concurrently.
func (i *Inspector) Templates(ctx context.Context, q Query) ([]TemplateInfo, error) {
	var bps []*conveyor.Blueprint
	for _, bp := range i.templates.Blueprints() {
		if q.Filter == nil || q.Filter.MatchString(bp.ID()) {
			bps = append(bps, bp)
		}
	}
	out := make([]TemplateInfo, len(bps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.limit)
	for idx, bp := range bps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := i.template(bp, q)
			if err != nil {
				return err
			}
			out[idx] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *Inspector) template(bp *conveyor.Blueprint, q Query) (TemplateInfo, error) {
	info := TemplateInfo{ID: bp.ID()}
	switch {
	case q.Parts:
		for _, s := range conveyor.Sections() {
			used := make(map[string]bool)
			for _, ref := range bp.Parts(s) {
				used[ref.Name()] = true
				p, err := i.partInfo(s, ref.Name(), ref.Origin(), q.Vars)
				if err != nil {
					return TemplateInfo{}, err
				}
				info.Parts = append(info.Parts, p)
			}
			if !q.AllParts {
				continue
			}
			for _, f := range i.parts.Parts(s) {
				if used[f.Name()] {
					continue
				}
				p, err := i.partInfo(s, f.Name(), f.Path(), q.Vars)
				if err != nil {
					return TemplateInfo{}, err
				}
				info.Unused = append(info.Unused, p)
			}
		}
	case q.Vars:
		set := make(map[string]struct{})
		for _, s := range conveyor.Sections() {
			for _, ref := range bp.Parts(s) {
				vars, err := i.scanner.Scan(ref.Origin())
				if err != nil {
					return TemplateInfo{}, err
				}
				for _, v := range vars {
					set[v] = struct{}{}
				}
			}
		}
		for v := range set {
			info.Vars = append(info.Vars, v)
		}
		slices.Sort(info.Vars)
	}
	return info, nil
}

func (i *Inspector) partInfo(s conveyor.Section, name, path string, withVars bool) (PartInfo, error) {
	p := PartInfo{Section: s, Name: name}
	if !withVars {
		return p, nil
	}
	vars, err := i.scanner.Scan(path)
	if err != nil {
		return PartInfo{}, err
	}
	p.Vars = vars
	return p, nil
}
