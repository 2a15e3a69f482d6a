package yamlpath

import "fmt"

// MalformedPathError is returned when a path component is read through the
// accessor of another kind.
type MalformedPathError struct {
	Want ItemKind
	Got  ItemKind
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("yamlpath: component is a %s, not a %s", e.Got, e.Want)
}
