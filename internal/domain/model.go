package domain

import (
	"fmt"
	"sort"
)

// KanjiModelName is the note type the worksheet is built from.
const KanjiModelName = "NihongoShark.com: Kanji"

// StrokeDiagramField holds the <img> reference to the stroke order diagram.
const StrokeDiagramField = "strokeDiagram"

// Field describes one field of a note type. Ord is its position in the raw
// field data of every note of that type.
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Model is an Anki note type as stored in the collection's models JSON.
type Model struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"flds"`
}

// FieldNames returns the field names ordered by Ord.
func (m Model) FieldNames() []string {
	fields := make([]Field, len(m.Fields))
	copy(fields, m.Fields)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Ord < fields[j].Ord
	})

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Schema is the validated, ordered field list of a model.
type Schema struct {
	ModelID int64
	Fields  []string
}

// NewSchema builds a Schema from a model, rejecting empty or repeated field names.
func NewSchema(m Model) (Schema, error) {
	names := m.FieldNames()
	if len(names) == 0 {
		return Schema{}, fmt.Errorf("%w: model %q has no fields", ErrSchemaMismatch, m.Name)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return Schema{}, fmt.Errorf("%w: model %q has an unnamed field", ErrSchemaMismatch, m.Name)
		}
		if seen[name] {
			return Schema{}, fmt.Errorf("%w: model %q repeats field %q", ErrSchemaMismatch, m.Name, name)
		}
		seen[name] = true
	}
	return Schema{ModelID: m.ID, Fields: names}, nil
}

// Has reports whether the schema contains the named field.
func (s Schema) Has(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}
