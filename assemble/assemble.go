package assemble

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/skosovsky/conveyor"
	"github.com/skosovsky/conveyor/registry"

	"go.uber.org/zap"
)

// Generator is the first line of every rendered document.
const Generator = "## Auto-generated by conveyor line"

// DefaultPackagesOpts is passed to %packages when the caller gives nothing else.
const DefaultPackagesOpts = "--nobase"

// Options controls one render.
type Options struct {
	PackagesOpts string             // appended to the %packages directive
	Extra        conveyor.Selection // attached as virtual references for this render only
	Exclude      conveyor.Selection // detached for this render only
	Translate    bool               // substitute @@NAME@@ tokens and report supplied/remaining vars
	Legacy       bool               // suppress %end terminators
	DryRun       bool               // stop after the header and variable summary
	VarSummary   bool               // list every variable used by the template
}

// Renderer renders templates whose extra parts are resolved against a registry.
type Renderer struct {
	parts    *registry.Registry
	resolver conveyor.Resolver
	logger   *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithResolver sets the token resolver for every rendered part. Default is each part's own (the environment).
func WithResolver(r conveyor.Resolver) Option {
	return func(rd *Renderer) { rd.resolver = r }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(rd *Renderer) {
		if l != nil {
			rd.logger = l
		}
	}
}

// New returns a Renderer that looks up extra parts in parts.
func New(parts *registry.Registry, opts ...Option) *Renderer {
	r := &Renderer{parts: parts, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the document for bp to w. The document is built in memory and written
// only when complete, so on error nothing reaches w. An unknown extra part fails with
// ErrLookup and an exclude of an unattached part with ErrNotFound.
func (r *Renderer) Render(w io.Writer, bp *conveyor.Blueprint, o Options) error {
	work, err := r.prepare(bp, o)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.write(&buf, work, o); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderString renders bp into a string.
func (r *Renderer) RenderString(bp *conveyor.Blueprint, o Options) (string, error) {
	var sb strings.Builder
	if err := r.Render(&sb, bp, o); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *Renderer) prepare(bp *conveyor.Blueprint, o Options) (*conveyor.Blueprint, error) {
	work := bp.WorkingCopy()
	opts := []conveyor.PartOption{conveyor.WithTranslate(o.Translate)}
	if r.resolver != nil {
		opts = append(opts, conveyor.WithResolver(r.resolver))
	}
	work.Configure(opts...)
	for _, e := range o.Extra {
		for _, name := range e.Names {
			frag, err := r.parts.Get(e.Section, name)
			if err != nil {
				return nil, err
			}
			ref, err := work.Attach(e.Section, frag, conveyor.KindVirtual)
			if err != nil {
				return nil, err
			}
			ref.Configure(opts...)
		}
	}
	for _, e := range o.Exclude {
		for _, name := range e.Names {
			if err := work.Detach(e.Section, name); err != nil {
				return nil, err
			}
		}
	}
	return work, nil
}

func (r *Renderer) write(w *bytes.Buffer, work *conveyor.Blueprint, o Options) error {
	fmt.Fprintf(w, "%s\n\n", Generator)
	fmt.Fprintf(w, "##TEMPLATE: %s\n", work.ID())
	if len(o.Extra) > 0 {
		fmt.Fprintf(w, "##EXTRAS: %s\n", o.Extra)
	}
	if len(o.Exclude) > 0 {
		fmt.Fprintf(w, "##EXCLUDES: %s\n", o.Exclude)
	}
	fmt.Fprintf(w, "##LEGACY MODE: %s\n\n", onOff(o.Legacy))

	all, err := variables(work)
	if err != nil {
		return err
	}
	if o.VarSummary {
		fmt.Fprintf(w, "##All vars: %s\n", strings.Join(all, " "))
	}
	if o.DryRun {
		r.logger.Debug("dry run", zap.String("template", work.ID()), zap.Int("vars", len(all)))
		return nil
	}

	if o.Translate {
		supplied, err := suppliedVariables(work)
		if err != nil {
			return err
		}
		pairs := make([]string, 0, len(supplied))
		for _, k := range slices.Sorted(maps.Keys(supplied)) {
			pairs = append(pairs, fmt.Sprintf(`%s="%s"`, k, supplied[k]))
		}
		fmt.Fprintf(w, "##Supplied vars: %s\n", strings.Join(pairs, " "))
		var remaining []string
		for _, v := range all {
			if _, ok := supplied[v]; !ok {
				remaining = append(remaining, v)
			}
		}
		fmt.Fprintf(w, "##Remaining vars: %s\n\n", strings.Join(remaining, " "))
	}

	if err := writeParts(w, work.Parts(conveyor.Commands)); err != nil {
		return err
	}

	directive := "%packages"
	if o.PackagesOpts != "" {
		directive += " " + o.PackagesOpts
	}
	fmt.Fprintf(w, "\n%s\n", directive)
	if err := writeParts(w, work.Parts(conveyor.Packages)); err != nil {
		return err
	}
	if !o.Legacy {
		w.WriteString("%end\n\n")
	}

	for _, ref := range work.Parts(conveyor.Pre) {
		w.WriteString("\n%pre\n")
		if err := writePart(w, ref); err != nil {
			return err
		}
		if !o.Legacy {
			w.WriteString("\n%end\n")
		}
	}

	headers := work.Parts(conveyor.PostHeader)
	for _, ref := range work.Parts(conveyor.Post) {
		fmt.Fprintf(w, "\n%%post --erroronfail --log=%s\n", PostLogPath(ref.Name()))
		if err := writeParts(w, headers); err != nil {
			return err
		}
		if err := writePart(w, ref); err != nil {
			return err
		}
		if !o.Legacy {
			w.WriteString("\n%end\n")
		}
	}
	r.logger.Debug("template rendered", zap.String("template", work.ID()), zap.Int("parts", work.Len()))
	return nil
}

// PostLogPath returns the installer log path of the %post block for the named part.
func PostLogPath(name string) string {
	return "/root/anaconda-" + name + ".log"
}

func writeParts(w *bytes.Buffer, refs []*conveyor.Reference) error {
	for _, ref := range refs {
		if err := writePart(w, ref); err != nil {
			return err
		}
	}
	return nil
}

// writePart writes the part marker and the part content verbatim (or substituted).
func writePart(w *bytes.Buffer, ref *conveyor.Reference) error {
	fmt.Fprintf(w, "##PART: %s:%s\n", ref.Section(), ref.Name())
	for line, err := range ref.Lines() {
		if err != nil {
			return err
		}
		w.WriteString(line)
	}
	return nil
}

// variables returns the union of every variable used by the template, sorted.
func variables(bp *conveyor.Blueprint) ([]string, error) {
	set := make(map[string]struct{})
	for _, s := range conveyor.Sections() {
		for _, ref := range bp.Parts(s) {
			vars, err := ref.ScanVariables()
			if err != nil {
				return nil, err
			}
			for _, v := range vars {
				set[v] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(set)), nil
}

// suppliedVariables merges the resolved values of every part in section-then-name order.
func suppliedVariables(bp *conveyor.Blueprint) (map[string]string, error) {
	out := make(map[string]string)
	for _, s := range conveyor.Sections() {
		for _, ref := range bp.Parts(s) {
			subs, err := ref.SubstitutionMap()
			if err != nil {
				return nil, err
			}
			maps.Copy(out, subs)
		}
	}
	return out, nil
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}
