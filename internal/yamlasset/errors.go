package yamlasset

import (
	"errors"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/yamlpath"
)

// ErrReferenceCycle is returned when a value is reachable from itself.
var ErrReferenceCycle = errors.New("yamlasset: reference cycle")

// ConstructionError reports a type the serializer cannot create or write.
type ConstructionError struct {
	Type   reflect.Type // nil when the document names no type
	Reason string
}

func (e *ConstructionError) Error() string {
	if e.Type == nil {
		return "yamlasset: cannot construct value: " + e.Reason
	}

	return fmt.Sprintf("yamlasset: cannot construct %s: %s", e.Type, e.Reason)
}

// TypeMismatchError reports a document node whose shape does not fit its
// target type.
type TypeMismatchError struct {
	Path     yamlpath.Path
	Expected string
	Got      string
	Line     int
	Err      error
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("yamlasset: %s (line %d): expected %s, got %s", e.Path, e.Line, e.Expected, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }

func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar " + node.ShortTag()
	case yaml.AliasNode:
		return "alias"
	default:
		return "empty node"
	}
}
