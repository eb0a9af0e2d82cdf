// Package registry loads canonical fragments from <root>/parts/<section>/<name>
// into memory, keyed by section and name. Blacklisted names (e.g. version-control
// directories) are never loaded. Use New to create a Registry and Load to read it.
package registry
