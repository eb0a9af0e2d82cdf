package conveyor

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry, blueprint and link operations.
// All use prefix "conveyor:" for identification. Callers should use errors.Is/errors.As.
var (
	ErrNotFound         = errors.New("conveyor: not found")
	ErrLookup           = errors.New("conveyor: fragment not in registry")
	ErrIO               = errors.New("conveyor: link operation failed")
	ErrIntegrity        = errors.New("conveyor: rename propagation incomplete")
	ErrUnknownSection   = errors.New("conveyor: unknown section")
	ErrInvalidSelection = errors.New("conveyor: malformed part selection")
	ErrInvalidName      = errors.New("conveyor: invalid name")
	ErrInvalidManifest  = errors.New("conveyor: invalid template manifest")
)

// PartError wraps a sentinel error with the operation, section, part name and blueprint involved.
// Blueprint is empty for registry operations.
type PartError struct {
	Op        string
	Blueprint string
	Section   Section
	Name      string
	Err       error
}

// Error implements error.
func (e *PartError) Error() string {
	var sb strings.Builder
	sb.WriteString("conveyor: ")
	sb.WriteString(e.Op)
	if e.Section != "" {
		sb.WriteString(" ")
		sb.WriteString(string(e.Section))
		if e.Name != "" {
			sb.WriteString("/")
			sb.WriteString(e.Name)
		}
	}
	if e.Blueprint != "" {
		fmt.Fprintf(&sb, " in template %q", e.Blueprint)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

// Unwrap returns the wrapped error for errors.Is/errors.As.
func (e *PartError) Unwrap() error { return e.Err }

// IntegrityError reports a rename whose propagation failed for some blueprints.
// The canonical fragment is already renamed; Failed lists the blueprints still pointing at From.
type IntegrityError struct {
	Section Section
	From    string
	To      string
	Failed  []string
	Err     error // individual failures combined with multierr
}

// Error implements error.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("conveyor: rename %s/%s -> %s left %d template(s) stale [%s]: %v",
		e.Section, e.From, e.To, len(e.Failed), strings.Join(e.Failed, ","), e.Err)
}

// Is reports whether target is ErrIntegrity.
func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Unwrap returns the combined per-blueprint failures.
func (e *IntegrityError) Unwrap() error { return e.Err }

// Compile-time checks.
var (
	_ error = (*PartError)(nil)
	_ error = (*IntegrityError)(nil)
)

// ValidateName checks that name is usable as a single path segment (fragment name or template id).
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
