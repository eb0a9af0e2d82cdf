// Package assemble renders a template into one kickstart document.
//
// Sections are emitted as commands, %packages, one %pre block per pre part and one
// %post block per post part with every post.header part inlined before it. Within a
// section parts are always sorted by name. Ad-hoc extra and excluded parts are applied
// to a working copy of the template; the stored template is never modified.
package assemble
