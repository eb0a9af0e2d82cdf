package inspect

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/skosovsky/conveyor"

	"gopkg.in/yaml.v3"
)

// WriteParts writes one "section name ( VARS )" line per part.
func WriteParts(w io.Writer, parts []PartInfo) error {
	bw := bufio.NewWriter(w)
	for _, p := range parts {
		fmt.Fprintf(bw, "%s %s%s\n", p.Section, p.Name, varsSuffix(p.Vars))
	}
	return bw.Flush()
}

// WriteTemplates writes the text listing of templates as shaped by q:
// the id, then "  ++ section name" for used parts and "  -- section name" for unused ones.
func WriteTemplates(w io.Writer, templates []TemplateInfo, q Query) error {
	bw := bufio.NewWriter(w)
	for _, t := range templates {
		if !q.Parts {
			fmt.Fprintf(bw, "%s%s\n", t.ID, varsSuffix(t.Vars))
			continue
		}
		fmt.Fprintln(bw, t.ID)
		for _, s := range conveyor.Sections() {
			writeMarked(bw, "++", s, t.Parts)
			writeMarked(bw, "--", s, t.Unused)
		}
	}
	return bw.Flush()
}

func writeMarked(w io.Writer, mark string, s conveyor.Section, parts []PartInfo) {
	for _, p := range parts {
		if p.Section == s {
			fmt.Fprintf(w, "  %s %s %s%s\n", mark, p.Section, p.Name, varsSuffix(p.Vars))
		}
	}
}

func varsSuffix(vars []string) string {
	if len(vars) == 0 {
		return ""
	}
	return " ( " + strings.Join(vars, " ") + " )"
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("inspect: encode yaml: %w", err)
	}
	return enc.Close()
}
