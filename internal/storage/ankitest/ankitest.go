// Package ankitest builds throwaway Anki collections for tests.
package ankitest

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/conorfennell/kanjisheet/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Collection is a writable collection file in a test's temp directory.
type Collection struct {
	// Path is the collection.anki2 file.
	Path string

	t    testing.TB
	conn *sql.DB
}

// New creates an empty collection under dir, or under t.TempDir() when dir
// is empty. The connection is closed when the test ends.
func New(t testing.TB, dir string) *Collection {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	path := filepath.Join(dir, "collection.anki2")

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &Collection{Path: path, t: t, conn: conn}
}

// KanjiModel returns a kanji note type with the given fields in order.
func KanjiModel(id int64, fields ...string) domain.Model {
	m := domain.Model{ID: id, Name: domain.KanjiModelName}
	for i, name := range fields {
		m.Fields = append(m.Fields, domain.Field{Name: name, Ord: i})
	}
	return m
}

// SetModelsJSON overwrites the raw models column.
func (c *Collection) SetModelsJSON(raw string) *Collection {
	c.t.Helper()
	c.exec(`UPDATE col SET models = ? WHERE id = 1`, raw)
	return c
}

// AddModel adds a note type to the models JSON.
func (c *Collection) AddModel(m domain.Model) *Collection {
	c.t.Helper()

	var raw string
	if err := c.conn.QueryRow(`SELECT models FROM col WHERE id = 1`).Scan(&raw); err != nil {
		c.t.Fatalf("failed to read models: %v", err)
	}
	models := map[string]domain.Model{}
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		c.t.Fatalf("failed to decode models: %v", err)
	}
	models[strconv.FormatInt(m.ID, 10)] = m

	encoded, err := json.Marshal(models)
	if err != nil {
		c.t.Fatalf("failed to encode models: %v", err)
	}
	return c.SetModelsJSON(string(encoded))
}

// AddNote inserts a note whose field values are joined in order.
func (c *Collection) AddNote(id, modelID int64, fields ...string) *Collection {
	c.t.Helper()
	sortField := ""
	if len(fields) > 0 {
		sortField = fields[0]
	}
	c.exec(`INSERT INTO notes (id, guid, mid, flds, sfld) VALUES (?, ?, ?, ?, ?)`,
		id, strconv.FormatInt(id, 36), modelID, strings.Join(fields, domain.FieldSeparator), sortField)
	return c
}

// AddRawNote inserts a note with an unsplit field blob.
func (c *Collection) AddRawNote(id, modelID int64, flds string) *Collection {
	c.t.Helper()
	c.exec(`INSERT INTO notes (id, mid, flds) VALUES (?, ?, ?)`, id, modelID, flds)
	return c
}

// AddCard inserts a card for a note.
func (c *Collection) AddCard(id, noteID int64) *Collection {
	c.t.Helper()
	c.exec(`INSERT INTO cards (id, nid) VALUES (?, ?)`, id, noteID)
	return c
}

// AddReview logs a review of a card at id (milliseconds since the epoch).
func (c *Collection) AddReview(id, cardID int64, ease domain.Ease) *Collection {
	c.t.Helper()
	c.exec(`INSERT INTO revlog (id, cid, ease) VALUES (?, ?, ?)`, id, cardID, int(ease))
	return c
}

// Exec runs an arbitrary statement against the collection.
func (c *Collection) Exec(stmt string, args ...any) *Collection {
	c.t.Helper()
	c.exec(stmt, args...)
	return c
}

func (c *Collection) exec(stmt string, args ...any) {
	c.t.Helper()
	if _, err := c.conn.Exec(stmt, args...); err != nil {
		c.t.Fatalf("failed to exec %q: %v", stmt, err)
	}
}
