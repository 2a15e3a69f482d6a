package yamlasset

import (
	"fmt"
	"reflect"
	"slices"

	"cogentcore.org/core/base/keylist"
	"gopkg.in/yaml.v3"

	"assetyaml/internal/collection"
	"assetyaml/internal/diagnostic"
	"assetyaml/internal/itemid"
	"assetyaml/internal/override"
	"assetyaml/internal/reflection"
	"assetyaml/internal/yamlpath"
	"assetyaml/primitive"
)

var idType = reflect.TypeFor[itemid.ID]()

// IdentifiedCollection is the identity-keyed form of a sequence, in
// position order. It only exists while a document is written or read.
type IdentifiedCollection struct {
	ElemType reflect.Type
	Items    keylist.List[itemid.ID, reflect.Value]
	Deleted  []itemid.ID
}

// DictionaryEntry is one entry of an IdentifiedDictionary.
type DictionaryEntry struct {
	Key   reflect.Value
	Value reflect.Value
}

// IdentifiedDictionary is the identity-keyed form of a map, in key order
// when written and document order when read.
type IdentifiedDictionary struct {
	KeyType  reflect.Type
	ElemType reflect.Type
	Entries  keylist.List[itemid.ID, DictionaryEntry]
	Deleted  []itemid.ID
}

// registryOf returns the registry attached to a container. Containers with
// no identity get a detached registry, so their ids are minted again on
// every write.
func registryOf(v reflect.Value) *collection.Identifiers {
	if ids, ok := collection.IdsOfValue(v); ok {
		return ids
	}

	return collection.NewIdentifiers()
}

// TransformForSerialization returns the identified form of seq, a slice
// value. Positions without an id get a fresh one, recorded in the registry
// of seq so that writing the same instance again is stable.
func TransformForSerialization(seq reflect.Value) *IdentifiedCollection {
	return transformForSerialization(seq, registryOf(seq))
}

func transformForSerialization(seq reflect.Value, ids *collection.Identifiers) *IdentifiedCollection {
	n := seq.Len()

	for _, key := range ids.Keys() {
		if pos, ok := key.(int); !ok || pos >= n {
			ids.Remove(key)
		}
	}

	ic := &IdentifiedCollection{ElemType: seq.Type().Elem()}

	for i := range n {
		id, ok := ids.Get(i)
		if !ok || ic.Items.IndexByKey(id) >= 0 {
			id = itemid.New()
			ids.Set(i, id)
		}

		ic.Items.Set(id, seq.Index(i))
	}

	ic.Deleted = ids.DeletedItems()

	return ic
}

// TransformAfterDeserialization stores the items of ic into dst, a settable
// slice, in order and rebuilds the registry of dst. It returns the deleted
// ids that were refused because they name a live item.
func TransformAfterDeserialization(ic *IdentifiedCollection, dst reflect.Value) []itemid.ID {
	return transformAfterDeserialization(ic, dst, registryOf(dst))
}

func transformAfterDeserialization(ic *IdentifiedCollection, dst reflect.Value, ids *collection.Identifiers) []itemid.ID {
	n := ic.Items.Len()
	if dst.IsNil() || dst.Len() != n {
		dst.Set(reflect.MakeSlice(dst.Type(), n, n))
	}

	ids.Clear()

	for i, id := range ic.Items.Keys {
		dst.Index(i).Set(ic.Items.Values[i])
		ids.Set(i, id)
	}

	return markDeleted(ids, ic.Deleted)
}

// TransformDictionaryForSerialization returns the identified form of m, a
// map value.
func TransformDictionaryForSerialization(m reflect.Value) *IdentifiedDictionary {
	ids := registryOf(m)
	keyType := m.Type().Key()

	for _, key := range ids.Keys() {
		if !hasKey(m, key) {
			ids.Remove(key)
		}
	}

	collection.PruneEntries(m, func(key any) bool { return hasKey(m, key) })

	dict := &IdentifiedDictionary{KeyType: keyType, ElemType: m.Type().Elem()}

	keys := m.MapKeys()
	reflection.SortKeys(keys)

	for _, key := range keys {
		itemID, ok := ids.Get(key.Interface())

		switch {
		case keyType == idType:
			itemID = key.Interface().(itemid.ID)
			ids.Set(key.Interface(), itemID)
		case !ok || dict.Entries.IndexByKey(itemID) >= 0:
			itemID = itemid.New()
			ids.Set(key.Interface(), itemID)
		}

		dict.Entries.Set(itemID, DictionaryEntry{Key: key, Value: m.MapIndex(key)})
	}

	dict.Deleted = ids.DeletedItems()

	return dict
}

// TransformDictionaryAfterDeserialization stores the entries of dict into dst,
// a settable map, and rebuilds its registry. An existing map is cleared in
// place and keeps its registry.
func TransformDictionaryAfterDeserialization(dict *IdentifiedDictionary, dst reflect.Value) []itemid.ID {
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), dict.Entries.Len()))
	} else {
		dst.Clear()
	}

	ids := registryOf(dst)
	ids.Clear()

	for i, itemID := range dict.Entries.Keys {
		entry := dict.Entries.Values[i]
		dst.SetMapIndex(entry.Key, entry.Value)
		ids.Set(entry.Key.Interface(), itemID)
	}

	collection.PruneEntries(dst, func(key any) bool { return hasKey(dst, key) })

	return markDeleted(ids, dict.Deleted)
}

// hasKey reports whether key, taken from a registry of m, is still in m.
func hasKey(m reflect.Value, key any) bool {
	kv := reflect.ValueOf(key)
	if !kv.IsValid() || !kv.Type().AssignableTo(m.Type().Key()) {
		return false
	}

	return m.MapIndex(kv).IsValid()
}

func markDeleted(ids *collection.Identifiers, deleted []itemid.ID) []itemid.ID {
	var refused []itemid.ID

	for _, id := range deleted {
		if !ids.MarkAsDeleted(id) {
			refused = append(refused, id)
		}
	}

	return refused
}

// synthesizeID picks the id of an element read from a legacy document.
func synthesizeID(elem reflect.Value, used map[itemid.ID]struct{}) itemid.ID {
	id, ok := itemid.IdentityOf(elem)
	if _, taken := used[id]; !ok || taken {
		id = itemid.New()
	}

	used[id] = struct{}{}

	return id
}

func encodeTombstones(node *yaml.Node, deleted []itemid.ID, key func(itemid.ID) string) {
	for _, id := range deleted {
		node.Content = append(node.Content, keyNode(key(id)), tombstoneNode())
	}
}

func identifiedNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func finishIdentified(node *yaml.Node) *yaml.Node {
	if len(node.Content) == 0 {
		node.Style = yaml.FlowStyle
	}

	return node
}

// itemEntry is one live entry of an identified mapping being read.
type itemEntry struct {
	id    itemid.ID
	key   string
	value *yaml.Node
}

// itemReader collects the entries of an identified mapping, applying the
// duplicate and tombstone rules.
type itemReader struct {
	ctx     *DecodeContext
	live    []itemEntry
	seen    map[itemid.ID]struct{}
	deleted []itemid.ID
}

func newItemReader(ctx *DecodeContext) *itemReader {
	return &itemReader{ctx: ctx, seen: make(map[itemid.ID]struct{})}
}

func (r *itemReader) add(at *yaml.Node, id itemid.ID, t override.Type, key string, value *yaml.Node) {
	if IsTombstone(value) {
		if !slices.Contains(r.deleted, id) {
			r.deleted = append(r.deleted, id)
		}

		return
	}

	if _, dup := r.seen[id]; dup {
		fresh := itemid.New()
		r.ctx.warn(diagnostic.CodeDuplicateItemID, at.Line, "item id %s appears twice, the second item gets id %s", id, fresh)
		id = fresh
	}

	r.seen[id] = struct{}{}
	r.ctx.SetOverride(yamlpath.ItemID(id), t)
	r.live = append(r.live, itemEntry{id: id, key: key, value: value})
}

func (r *itemReader) reportRefused(line int, refused []itemid.ID) {
	for _, id := range refused {
		r.ctx.warn(diagnostic.CodeLiveTombstone, line, "item %s is both live and deleted, the tombstone is dropped", id)
	}
}

// collectionWithIdsSerializer writes slices as mappings from item id to
// element.
type collectionWithIdsSerializer struct {
	desc *reflection.TypeDescriptor
}

func (s collectionWithIdsSerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	if v.IsNil() {
		return nullNode(), nil
	}

	if v.Len() > 0 {
		leave, err := ctx.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
	}

	ic := transformForSerialization(v, ctx.registry(v))
	node := identifiedNode()
	defer ctx.detach()()

	for i, id := range ic.Items.Keys {
		item := yamlpath.ItemID(id)

		value, err := ctx.EncodeAt(item, ic.Items.Values[i], reflection.StyleAny)
		if err != nil {
			return nil, err
		}

		node.Content = append(node.Content, keyNode(ItemKey(id, ctx.Override(item))), value)
	}

	encodeTombstones(node, ic.Deleted, func(id itemid.ID) string {
		return ItemKey(id, ctx.Override(yamlpath.ItemID(id)))
	})

	return finishIdentified(node), nil
}

func (s collectionWithIdsSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return s.decodeLegacy(ctx, node, dst)
	case yaml.MappingNode:
	default:
		return ctx.mismatch(node, "identified "+s.desc.Type.String(), nil)
	}

	r := newItemReader(ctx)
	parsed := 0

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		id, t, ok := ParseItemKey(key.Value)
		if !ok {
			ctx.warn(diagnostic.CodeMalformedItemKey, key.Line, "%q is not an item id, the entry is skipped", key.Value)
			continue
		}

		parsed++
		r.add(key, id, t, "", value)
	}

	if parsed == 0 && len(node.Content) > 0 {
		return ctx.mismatch(node, "identified "+s.desc.Type.String(), fmt.Errorf("no key is an item id"))
	}

	n := len(r.live)
	dst.Set(reflect.MakeSlice(dst.Type(), n, n))

	ic := &IdentifiedCollection{ElemType: s.desc.Container.ElementType(), Deleted: r.deleted}
	restore := ctx.detach()

	for i, entry := range r.live {
		slot := dst.Index(i)
		ctx.initialize(slot)

		if err := ctx.DecodeAt(yamlpath.ItemID(entry.id), entry.value, slot, reflection.StyleAny); err != nil {
			restore()
			return err
		}

		ic.Items.Set(entry.id, slot)
	}

	restore()
	r.reportRefused(node.Line, transformAfterDeserialization(ic, dst, ctx.registry(dst)))

	return nil
}

// decodeLegacy reads a collection written before item ids existed and gives
// its items ids.
func (s collectionWithIdsSerializer) decodeLegacy(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	n := len(node.Content)
	dst.Set(reflect.MakeSlice(dst.Type(), n, n))
	restore := ctx.detach()

	for i, child := range node.Content {
		slot := dst.Index(i)
		ctx.initialize(slot)

		if err := ctx.DecodeAt(yamlpath.Index(i), child, slot, reflection.StyleAny); err != nil {
			restore()
			return err
		}
	}

	restore()

	ids := ctx.registry(dst)
	ids.Clear()

	used := make(map[itemid.ID]struct{}, n)
	for i := range n {
		ids.Set(i, synthesizeID(dst.Index(i), used))
	}

	ctx.alias(diagnostic.CodeLegacyCollection, node.Line, "%s is written without item ids", s.desc.Type)

	return nil
}

// dictionaryWithIdsSerializer writes maps as mappings from "<id>~<key>" to
// value, or from the key itself when keys are item ids.
type dictionaryWithIdsSerializer struct {
	desc *reflection.TypeDescriptor
}

func (s dictionaryWithIdsSerializer) idKeyed() bool {
	return s.desc.Container.KeyType() == idType
}

func (s dictionaryWithIdsSerializer) Encode(ctx *EncodeContext, v reflect.Value) (*yaml.Node, error) {
	if v.IsNil() {
		return nullNode(), nil
	}

	leave, err := ctx.enter(v)
	if err != nil {
		return nil, err
	}
	defer leave()

	id := TransformDictionaryForSerialization(v)
	node := identifiedNode()

	for i, itemID := range id.Entries.Keys {
		entry := id.Entries.Values[i]
		item := yamlpath.ItemID(itemID)

		var key string

		if s.idKeyed() {
			key = ItemKey(itemID, ctx.Override(item))
		} else {
			text, _, err := primitive.Format(entry.Key)
			if err != nil {
				return nil, &ConstructionError{Type: id.KeyType, Reason: "map key: " + err.Error()}
			}

			key = DictionaryKey(IdentifiedKey{ID: itemID, Key: text}, ctx.Override(item))
		}

		value, err := ctx.EncodeEntry(item, v, entry.Key, entry.Value, reflection.StyleAny)
		if err != nil {
			return nil, err
		}

		node.Content = append(node.Content, keyNode(key), value)
	}

	encodeTombstones(node, id.Deleted, func(itemID itemid.ID) string {
		if s.idKeyed() {
			return ItemKey(itemID, ctx.Override(yamlpath.ItemID(itemID)))
		}

		return DictionaryKey(IdentifiedKey{ID: itemID}, ctx.Override(yamlpath.ItemID(itemID)))
	})

	return finishIdentified(node), nil
}

func (s dictionaryWithIdsSerializer) Decode(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if node.Kind != yaml.MappingNode {
		return ctx.mismatch(node, "identified "+s.desc.Type.String(), nil)
	}

	if !s.idKeyed() && !allDictionaryKeys(node) {
		return s.decodeLegacy(ctx, node, dst)
	}

	r := newItemReader(ctx)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if s.idKeyed() {
			id, t, ok := ParseItemKey(key.Value)
			if !ok {
				ctx.warn(diagnostic.CodeMalformedItemKey, key.Line, "%q is not an item id, the entry is skipped", key.Value)
				continue
			}

			r.add(key, id, t, id.String(), value)

			continue
		}

		ik, t, _ := ParseDictionaryKey(key.Value)
		r.add(key, ik.ID, t, ik.Key, value)
	}

	keyType := s.desc.Container.KeyType()
	_, keyTag, err := primitive.Format(reflect.Zero(keyType))
	if err != nil {
		return &ConstructionError{Type: keyType, Reason: "map key: " + err.Error()}
	}

	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), len(r.live)))
	}

	id := &IdentifiedDictionary{KeyType: keyType, ElemType: s.desc.Container.ElementType(), Deleted: r.deleted}
	keys := make(map[any]struct{}, len(r.live))

	for _, entry := range r.live {
		key, err := primitive.Parse(entry.key, keyTag, keyType, primitive.CategoryAll)
		if err != nil {
			return ctx.mismatch(entry.value, keyType.String()+" key", err)
		}

		if _, dup := keys[key.Interface()]; dup {
			ctx.warn(diagnostic.CodeMalformedItemKey, entry.value.Line, "key %q appears twice, the entry is skipped", entry.key)
			continue
		}

		keys[key.Interface()] = struct{}{}

		elem := reflect.New(id.ElemType).Elem()
		ctx.initialize(elem)

		if err := ctx.DecodeEntry(yamlpath.ItemID(entry.id), entry.value, dst, key, elem, reflection.StyleAny); err != nil {
			return err
		}

		id.Entries.Set(entry.id, DictionaryEntry{Key: key, Value: elem})
	}

	r.reportRefused(node.Line, TransformDictionaryAfterDeserialization(id, dst))

	return nil
}

// decodeLegacy reads a map written before item ids existed.
func (s dictionaryWithIdsSerializer) decodeLegacy(ctx *DecodeContext, node *yaml.Node, dst reflect.Value) error {
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), len(node.Content)/2))
	}

	entries, err := decodePlainMap(ctx, node, s.desc, dst)
	if err != nil {
		return err
	}

	id := &IdentifiedDictionary{KeyType: s.desc.Container.KeyType(), ElemType: s.desc.Container.ElementType()}
	used := make(map[itemid.ID]struct{}, len(entries))

	for _, entry := range entries {
		id.Entries.Set(synthesizeID(entry.Value, used), entry)
	}

	TransformDictionaryAfterDeserialization(id, dst)
	ctx.alias(diagnostic.CodeLegacyCollection, node.Line, "%s is written without item ids", s.desc.Type)

	return nil
}

// allDictionaryKeys reports whether every key of node is "<id>~<key>".
func allDictionaryKeys(node *yaml.Node) bool {
	for i := 0; i < len(node.Content); i += 2 {
		if _, _, ok := ParseDictionaryKey(node.Content[i].Value); !ok {
			return false
		}
	}

	return true
}
