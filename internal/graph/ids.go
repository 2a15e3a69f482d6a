package graph

import (
	"reflect"

	"assetyaml/internal/collection"
	"assetyaml/internal/itemid"
	"assetyaml/internal/yamlasset"
)

var idType = reflect.TypeFor[itemid.ID]()

// GenerateMissingItemIDs gives an id to every item of the identified
// collections reachable from root that has none. Items carrying their own
// identity keep it. It returns the number of ids generated.
//
// Containers that cannot hold a registry, such as slices inside interface
// values, are skipped.
func GenerateMissingItemIDs(root any) (int, error) {
	generated := 0

	vis := Visitor{}
	err := vis.Visit(root, func(edge Edge, v reflect.Value) error {
		if !yamlasset.IsIdentified(v.Type(), edge.Style) || v.Len() == 0 {
			return nil
		}

		ids, ok := edge.Identifiers(v, true)
		if !ok {
			return nil
		}

		if v.Kind() == reflect.Slice {
			for i := range v.Len() {
				if _, ok := ids.Get(i); ok {
					continue
				}

				ids.Set(i, freshID(ids, v.Index(i)))
				generated++
			}

			return nil
		}

		for _, key := range v.MapKeys() {
			if _, ok := ids.Get(key.Interface()); ok {
				continue
			}

			id := freshID(ids, v.MapIndex(key))
			if key.Type() == idType && !ids.ContainsID(key.Interface().(itemid.ID)) {
				id = key.Interface().(itemid.ID)
			}

			ids.Set(key.Interface(), id)
			generated++
		}

		return nil
	})

	return generated, err
}

func freshID(ids *collection.Identifiers, elem reflect.Value) itemid.ID {
	if id, ok := itemid.IdentityOf(elem); ok && !ids.ContainsID(id) && !ids.IsDeleted(id) {
		return id
	}

	return itemid.New()
}
