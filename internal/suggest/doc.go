// Package suggest proposes known names for misspelled ones, using the edit
// distance of normalized identifiers.
package suggest
