package domain

// FieldValue is one named field of a decoded note.
type FieldValue struct {
	Name  string
	Value string
}

// FieldMap is the ordered name to value mapping of a decoded note.
type FieldMap struct {
	NoteID int64
	names  []string
	values map[string]string
}

// NewFieldMap pairs names with values positionally. Callers must pass slices
// of equal length.
func NewFieldMap(noteID int64, names, values []string) FieldMap {
	fm := FieldMap{
		NoteID: noteID,
		names:  make([]string, len(names)),
		values: make(map[string]string, len(names)),
	}
	copy(fm.names, names)
	for i, name := range names {
		fm.values[name] = values[i]
	}
	return fm
}

// Get returns the value of the named field, or "" if absent.
func (fm FieldMap) Get(name string) string {
	return fm.values[name]
}

// Lookup returns the value of the named field and whether it exists.
func (fm FieldMap) Lookup(name string) (string, bool) {
	v, ok := fm.values[name]
	return v, ok
}

// Set replaces the value of an existing field. It reports false and leaves
// the map unchanged when the field is not part of the map.
func (fm *FieldMap) Set(name, value string) bool {
	if _, ok := fm.values[name]; !ok {
		return false
	}
	fm.values[name] = value
	return true
}

// Names returns the field names in schema order.
func (fm FieldMap) Names() []string {
	out := make([]string, len(fm.names))
	copy(out, fm.names)
	return out
}

// Fields returns the fields in schema order.
func (fm FieldMap) Fields() []FieldValue {
	out := make([]FieldValue, len(fm.names))
	for i, name := range fm.names {
		out[i] = FieldValue{Name: name, Value: fm.values[name]}
	}
	return out
}

// Len returns the number of fields.
func (fm FieldMap) Len() int {
	return len(fm.names)
}
