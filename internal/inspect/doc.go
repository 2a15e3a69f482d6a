// Package inspect lints the item identities of asset documents.
//
// It reads raw YAML, without the Go types the document was written from,
// and lists every item of the identified collections and dictionaries it
// recognizes. Identity problems are reported as diagnostics:
//
//   - an id used twice in one collection (error)
//   - a key that is not an id inside an identified mapping (error)
//   - an id that is both live and deleted (warning)
//   - a block sequence, the legacy form of a collection (info)
//
// Fixed-size arrays are written as block sequences too, so the last finding
// is informational only.
package inspect
