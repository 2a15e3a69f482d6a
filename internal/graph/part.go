package graph

import (
	"reflect"

	"assetyaml/internal/yamlpath"
)

// PartResolver tells owned parts of a composite asset from references to
// them.
type PartResolver interface {
	// IsReferencedPart reports whether edge points at a part owned
	// elsewhere in the asset.
	IsReferencedPart(edge Edge, target reflect.Value) bool
}

// PartVisitor visits one part of a composite asset at a time: edges that
// reference another part are not followed.
type PartVisitor struct {
	Resolver PartResolver
	// Filter further restricts the edges followed. Nil follows the rest.
	Filter NodeFilter
}

// ShouldVisitNode implements NodeFilter.
func (p *PartVisitor) ShouldVisitNode(edge Edge, target reflect.Value) bool {
	if p.Resolver != nil && p.Resolver.IsReferencedPart(edge, target) {
		return false
	}

	return p.Filter == nil || p.Filter.ShouldVisitNode(edge, target)
}

// Visit walks root without crossing part references.
func (p *PartVisitor) Visit(root any, fn VisitFunc) error {
	vis := Visitor{Filter: p}

	return vis.Visit(root, fn)
}

// PartSet is the PartResolver of assets keeping their parts, values of
// PartType, in the collection at Owner. Any other edge to a PartType value
// is a reference.
type PartSet struct {
	Owner    yamlpath.Path
	PartType reflect.Type
}

// IsReferencedPart implements PartResolver.
func (s PartSet) IsReferencedPart(edge Edge, target reflect.Value) bool {
	if !s.isPart(target) {
		return false
	}

	return edge.Path.Len() != s.Owner.Len()+1 || !edge.Path.HasPrefix(s.Owner)
}

func (s PartSet) isPart(v reflect.Value) bool {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}

		v = v.Elem()
	}

	t := v.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t == baseType(s.PartType)
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
