package conveyor

import (
	"io"
	"os"
	"regexp"
	"slices"
)

// tokenPattern matches @@NAME@@ where NAME is one or more word characters.
var tokenPattern = regexp.MustCompile(`@@(\w+)@@`)

// Resolver looks up substitution values for @@NAME@@ tokens.
// A value that is present but empty still counts as resolved.
type Resolver interface {
	Lookup(name string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (string, bool)

// Lookup implements Resolver.
func (f ResolverFunc) Lookup(name string) (string, bool) { return f(name) }

// EnvResolver resolves tokens from the process environment.
var EnvResolver Resolver = ResolverFunc(os.LookupEnv)

// MapResolver resolves tokens from a fixed map (useful for tests and dry runs).
type MapResolver map[string]string

// Lookup implements Resolver.
func (m MapResolver) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Tokens returns the distinct token names in text in order of first appearance.
func Tokens(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Substitute replaces every token that r resolves with its value in a single pass,
// so values containing @@ are never expanded again. Unresolved tokens are kept verbatim.
// It returns the new text and every token name encountered, resolved or not.
func Substitute(text string, r Resolver) (string, []string) {
	names := Tokens(text)
	if len(names) == 0 {
		return text, nil
	}
	resolved := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := r.Lookup(name); ok {
			resolved[name] = v
		}
	}
	if len(resolved) == 0 {
		return text, names
	}
	out := tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if v, ok := resolved[tok[2:len(tok)-2]]; ok {
			return v
		}
		return tok
	})
	return out, names
}

// ScanVariables reads r to the end and returns the sorted distinct token names in it.
func ScanVariables(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	names := Tokens(string(data))
	slices.Sort(names)
	return names, nil
}
