package parser

import (
	"fmt"
	"strings"

	"github.com/conorfennell/kanjisheet/internal/domain"
)

// ParseFields splits a note's raw field data and pairs each value with the
// schema field at the same position.
func ParseFields(note domain.Note, schema domain.Schema) (domain.FieldMap, error) {
	if note.ModelID != schema.ModelID {
		return domain.FieldMap{}, fmt.Errorf("%w: note %d belongs to model %d, not %d",
			domain.ErrSchemaMismatch, note.ID, note.ModelID, schema.ModelID)
	}

	values := strings.Split(note.Fields, domain.FieldSeparator)
	if len(values) != len(schema.Fields) {
		return domain.FieldMap{}, fmt.Errorf("%w: note %d has %d fields, model has %d",
			domain.ErrSchemaMismatch, note.ID, len(values), len(schema.Fields))
	}

	return domain.NewFieldMap(note.ID, schema.Fields, values), nil
}

// ParseNotes decodes every note, stopping at the first mismatch.
func ParseNotes(notes []domain.Note, schema domain.Schema) ([]domain.FieldMap, error) {
	out := make([]domain.FieldMap, 0, len(notes))
	for _, n := range notes {
		fm, err := ParseFields(n, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, fm)
	}
	return out, nil
}
