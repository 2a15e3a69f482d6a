package reflection

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// TagKey is the struct tag read for member options.
const TagKey = "asset"

// Member describes one serialized member of an object type.
type Member struct {
	Name      string       // serialized name
	FieldName string       // Go field name
	Index     []int        // field index path, embedded structs included
	Type      reflect.Type // field type
	Order     int          // explicit order, valid when HasOrder
	HasOrder  bool
	Aliases   []string  // former names accepted when reading
	Style     DataStyle // member-level style, StyleAny if not set
}

// Get returns the member of obj. obj must be a struct of the declaring type.
func (m *Member) Get(obj reflect.Value) reflect.Value {
	return obj.FieldByIndex(m.Index)
}

// Set assigns value to the member of obj. obj must be addressable.
func (m *Member) Set(obj, value reflect.Value) {
	obj.FieldByIndex(m.Index).Set(value)
}

// HasAlias reports whether name is a former name of the member.
func (m *Member) HasAlias(name string) bool {
	return slices.Contains(m.Aliases, name)
}

// CompareMembers orders members for traversal and serialization: explicit
// order if either side has one (a side with no order is last), then
// declaration order with members promoted from embedded structs ahead of the
// embedding struct's own fields, then ordinal name comparison.
func CompareMembers(a, b *Member) int {
	if a.HasOrder || b.HasOrder {
		if c := cmp.Compare(orderOrLast(a), orderOrLast(b)); c != 0 {
			return c
		}
	}

	// Deeper index paths come from further up the embedding chain.
	if c := cmp.Compare(len(b.Index), len(a.Index)); c != 0 {
		return c
	}

	if c := slices.Compare(a.Index, b.Index); c != 0 {
		return c
	}

	return strings.Compare(a.Name, b.Name)
}

func orderOrLast(m *Member) int {
	if m.HasOrder {
		return m.Order
	}

	return math.MaxInt
}

type memberTag struct {
	skip     bool
	name     string
	order    int
	hasOrder bool
	aliases  []string
	style    DataStyle
}

// parseTag reads `asset:"Name,order=N,alias=Old,style=compact"`.
func parseTag(tag string) (memberTag, error) {
	var mt memberTag

	if tag == "-" {
		mt.skip = true
		return mt, nil
	}

	parts := strings.Split(tag, ",")
	mt.name = strings.TrimSpace(parts[0])

	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")

		switch key {
		case "order":
			n, err := strconv.Atoi(value)
			if err != nil {
				return mt, fmt.Errorf("invalid order %q: %w", value, err)
			}

			mt.order, mt.hasOrder = n, true
		case "alias":
			if value == "" {
				return mt, fmt.Errorf("empty alias")
			}

			mt.aliases = append(mt.aliases, value)
		case "style":
			style, err := ParseDataStyle(value)
			if err != nil {
				return mt, err
			}

			mt.style = style
		case "":
		default:
			return mt, fmt.Errorf("unknown option %q", key)
		}
	}

	return mt, nil
}

// collectMembers flattens the exported fields of a struct type. Fields of
// embedded structs are promoted unless a shallower field has the same name.
func collectMembers(t reflect.Type) ([]*Member, error) {
	var (
		members []*Member
		byName  = map[string]int{} // name -> depth
	)

	var walk func(t reflect.Type, index []int) error

	walk = func(t reflect.Type, index []int) error {
		for i := range t.NumField() {
			field := t.Field(i)
			fieldIndex := append(slices.Clone(index), i)

			mt, err := parseTag(field.Tag.Get(TagKey))
			if err != nil {
				return fmt.Errorf("%s.%s: %w", t, field.Name, err)
			}

			if mt.skip {
				continue
			}

			if field.Anonymous && field.Type.Kind() == reflect.Struct && mt.name == "" {
				if err := walk(field.Type, fieldIndex); err != nil {
					return err
				}

				continue
			}

			if !field.IsExported() {
				continue
			}

			name := cmp.Or(mt.name, field.Name)
			if depth, ok := byName[name]; ok {
				if depth <= len(fieldIndex) {
					continue
				}

				members = slices.DeleteFunc(members, func(m *Member) bool { return m.Name == name })
			}

			byName[name] = len(fieldIndex)
			members = append(members, &Member{
				Name:      name,
				FieldName: field.Name,
				Index:     fieldIndex,
				Type:      field.Type,
				Order:     mt.order,
				HasOrder:  mt.hasOrder,
				Aliases:   mt.aliases,
				Style:     mt.style,
			})
		}

		return nil
	}

	if err := walk(t, nil); err != nil {
		return nil, err
	}

	slices.SortStableFunc(members, CompareMembers)

	return members, nil
}
