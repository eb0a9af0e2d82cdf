// Package store loads blueprints ("templates") from <root>/templates/<id>/<section>/<name>,
// where every entry is a durable link into the parts tree.
package store
