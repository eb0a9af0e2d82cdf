// Package conveyor composes a kickstart-style document out of reusable text fragments.
// Fragments live in a category-partitioned registry; blueprints reference them through
// durable links (or session-only virtual references) and are rendered in a fixed section order.
// Fragment bodies are opaque text; @@NAME@@ tokens are substituted on read when translate mode is on.
package conveyor
