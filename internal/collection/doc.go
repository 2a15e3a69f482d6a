// Package collection tracks item ids of collections and dictionaries.
//
// Every slice, array or map that takes part in asset serialization can have
// an Identifiers registry attached to it. The registry lives in a
// process-wide side table instead of a field of the container, so plain Go
// containers need no wrapper type:
//
//	ids := collection.IdsOf(&asset.Names)     // slice: pointer to the field
//	ids := collection.IdsOf(asset.Properties) // map: the map itself
//
// The side table is safe for concurrent use and holds its keys weakly.
//
// Sequence registries are keyed by position. Use Insert, RemoveAt, Move and
// the other editing functions to keep positions and ids in step.
package collection
