package domain

import "errors"

var (
	// ErrSchemaNotFound means the collection has no note type named KanjiModelName.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrEmptySelection means the review window matched no cards.
	ErrEmptySelection = errors.New("empty selection")

	// ErrMissingMedia means a referenced image file could not be found.
	ErrMissingMedia = errors.New("missing media file")

	// ErrSchemaMismatch means note data does not fit the note type's fields.
	ErrSchemaMismatch = errors.New("schema mismatch")
)
