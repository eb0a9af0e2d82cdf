package assemble

import (
	"strings"

	"github.com/skosovsky/conveyor"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders two templates with the same options and returns their line diff.
func (r *Renderer) Diff(from, to *conveyor.Blueprint, o Options) (string, error) {
	a, err := r.RenderString(from, o)
	if err != nil {
		return "", err
	}
	b, err := r.RenderString(to, o)
	if err != nil {
		return "", err
	}
	return Diff(a, b), nil
}

// Diff returns a line diff of two documents. Every line is prefixed with
// ' ' (unchanged), '-' (only in from) or '+' (only in to).
// Identical documents produce only ' ' lines.
func Diff(from, to string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// splitLines splits text after every newline; a final unterminated line gets one.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}
