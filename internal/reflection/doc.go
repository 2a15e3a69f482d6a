// Package reflection describes Go types the way the asset serializer and the
// graph visitor consume them.
//
// A Factory builds one TypeDescriptor per reflect.Type and caches it:
//   - objects list their members in CompareMembers order,
//   - slices, maps and arrays expose a Container,
//   - scalars carry their primitive kind.
//
// Members are exported struct fields; embedded structs are flattened so a type
// that embeds a base shares the base members. Options are read from the
// `asset` struct tag:
//
//	type Light struct {
//		Name      string   `asset:",order=0"`
//		Intensity float64  `asset:"Power,alias=Intensity"`
//		Tags      []string `asset:",style=compact"`
//		cache     []byte
//		Scratch   any `asset:"-"`
//	}
package reflection
