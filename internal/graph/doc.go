// Package graph walks asset object graphs.
//
// A Visitor goes depth first through members and container elements,
// building the yamlpath of every node it reaches. A NodeFilter prunes the
// edges it follows; PartVisitor uses one to stop at references between the
// parts of a composite asset, so each part is visited as its own tree.
//
// GenerateMissingItemIDs is a visitor pass assigning ids to every item of
// the identified collections of an asset before it is saved or diffed.
package graph
