package inspect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"assetyaml/internal/diagnostic"
	"assetyaml/internal/itemid"
	"assetyaml/internal/override"
	"assetyaml/internal/yamlasset"
	"assetyaml/internal/yamlpath"
)

// ItemRecord is one entry of an identified collection or dictionary.
type ItemRecord struct {
	Path yamlpath.Path
	ID   itemid.ID
	// Key is the original key of a dictionary entry. It is empty for
	// collection items and for dictionary tombstones.
	Key        string
	Dictionary bool
	Deleted    bool
	Override   override.Type
	Line       int
}

// Report is what Document learned about one document.
type Report struct {
	// Tag is the root tag, empty when the document has none.
	Tag         string
	Items       []ItemRecord
	Diagnostics diagnostic.Diagnostics
}

// Live returns the records that are not tombstones.
func (r *Report) Live() []ItemRecord {
	var live []ItemRecord

	for _, it := range r.Items {
		if !it.Deleted {
			live = append(live, it)
		}
	}

	return live
}

// Read parses one YAML document from r and inspects it.
func Read(r io.Reader) (*Report, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("inspect: empty document")
		}

		return nil, fmt.Errorf("inspect: %w", err)
	}

	return Document(&doc), nil
}

// File inspects the document stored at path.
func File(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Document inspects a parsed document. It needs no Go types: identified
// mappings are recognized by their keys.
func Document(node *yaml.Node) *Report {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	r := &Report{}
	if strings.HasPrefix(node.Tag, "!") && !strings.HasPrefix(node.Tag, "!!") {
		r.Tag = node.Tag
	}

	r.walk(yamlpath.New(), node)

	return r
}

func (r *Report) walk(path yamlpath.Path, node *yaml.Node) {
	switch node.Kind {
	case yaml.MappingNode:
		if identified(node) {
			r.items(path, node)
			return
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			name, _ := override.SplitPostfix(node.Content[i].Value)
			r.walk(path.With(yamlpath.Member(name)), node.Content[i+1])
		}
	case yaml.SequenceNode:
		if node.Style&yaml.FlowStyle == 0 && len(node.Content) > 0 {
			r.Diagnostics.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticInfo,
				Code:     diagnostic.CodeLegacyCollection,
				Message:  "block sequence without item ids",
				Path:     path.String(),
				Line:     node.Line,
			})
		}

		for i, child := range node.Content {
			r.walk(path.With(yamlpath.Index(i)), child)
		}
	}
}

// identified reports whether most keys of a mapping are item or dictionary
// keys.
func identified(node *yaml.Node) bool {
	ids, others := 0, 0

	for i := 0; i < len(node.Content); i += 2 {
		if isIdentifiedKey(node.Content[i].Value) {
			ids++
		} else {
			others++
		}
	}

	return ids > others
}

func isIdentifiedKey(text string) bool {
	if _, _, ok := yamlasset.ParseItemKey(text); ok {
		return true
	}

	_, _, ok := yamlasset.ParseDictionaryKey(text)

	return ok
}

func (r *Report) items(path yamlpath.Path, node *yaml.Node) {
	live := make(map[itemid.ID]int)

	var tombstones []ItemRecord

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		rec, ok := parseRecord(key.Value)
		if !ok {
			r.add(diagnostic.DiagnosticError, diagnostic.CodeMalformedItemKey, path, key.Line,
				"key %q of an identified mapping is not an item id", key.Value)

			continue
		}

		rec.Path = path.With(yamlpath.ItemID(rec.ID))
		rec.Line = key.Line
		rec.Deleted = yamlasset.IsTombstone(value)

		if rec.Deleted {
			if !slices.ContainsFunc(tombstones, func(t ItemRecord) bool { return t.ID == rec.ID }) {
				tombstones = append(tombstones, rec)
				r.Items = append(r.Items, rec)
			}

			continue
		}

		if first, dup := live[rec.ID]; dup {
			r.add(diagnostic.DiagnosticError, diagnostic.CodeDuplicateItemID, rec.Path, key.Line,
				"item id %s is already used at line %d", rec.ID, first)
		} else {
			live[rec.ID] = key.Line
		}

		r.Items = append(r.Items, rec)
		r.walk(rec.Path, value)
	}

	for _, t := range tombstones {
		if _, ok := live[t.ID]; ok {
			r.add(diagnostic.DiagnosticWarning, diagnostic.CodeLiveTombstone, t.Path, t.Line,
				"item %s is both live and deleted", t.ID)
		}
	}
}

func parseRecord(text string) (ItemRecord, bool) {
	if id, t, ok := yamlasset.ParseItemKey(text); ok {
		return ItemRecord{ID: id, Override: t}, true
	}

	if key, t, ok := yamlasset.ParseDictionaryKey(text); ok {
		return ItemRecord{ID: key.ID, Key: key.Key, Dictionary: true, Override: t}, true
	}

	return ItemRecord{}, false
}

func (r *Report) add(sev diagnostic.DiagnosticSeverity, code string, path yamlpath.Path, line int, format string, args ...any) {
	r.Diagnostics.Add(diagnostic.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path.String(),
		Line:     line,
	})
}
