// Package engine coordinates the parts registry and the template store for operations
// that cross both: renaming a canonical part and propagating the rename to every
// template, adding parts to templates, and scaffolding, creating or cloning templates.
//
// The engine assumes it is the only writer of its base directory while it runs.
// Multi-step filesystem changes are not transactional.
package engine
