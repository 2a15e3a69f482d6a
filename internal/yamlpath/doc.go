// Package yamlpath models locations inside an asset object graph.
//
// A Path is a list of components, each a member name, an index (sequence
// position or dictionary key) or an item id. Paths key override information
// and name the subject of diagnostics. Their textual form is
//
//	(object).Parts{0a0000000a0000000a0000000a000000}.Name
//	(object).Values[2]
//
// The textual form is for humans and logs; it is never parsed back.
package yamlpath
