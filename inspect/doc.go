// Package inspect lists parts and templates with their variables.
// It only reads part files and never changes registry or template state,
// so templates are scanned concurrently and repeated scans of a shared part are cached.
package inspect
