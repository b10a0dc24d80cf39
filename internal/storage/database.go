package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/kanjisheet/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB is a read-only handle on an Anki collection.
type DB struct {
	conn *sql.DB
}

// Open opens the collection at path read-only. The file must exist; sqlite
// would otherwise create an empty database.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to collection: %w", err)
	}

	return &DB{conn: db}, nil
}

// readOnlyDSN builds a sqlite URI filename; modernc passes "file:" names
// through to sqlite with their query, so mode=ro is honoured.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	u := url.URL{Scheme: "file", Path: p}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Models returns every note type stored in the collection row.
func (db *DB) Models(ctx context.Context) ([]domain.Model, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx, `SELECT models FROM col LIMIT 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection row is missing", domain.ErrSchemaNotFound)
		}
		return nil, fmt.Errorf("failed to read models: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: note types are not stored in the col table (collection written by Anki 2.1.50 or later)", domain.ErrSchemaNotFound)
	}

	var byID map[string]domain.Model
	if err := json.Unmarshal([]byte(raw), &byID); err != nil {
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}

	models := make([]domain.Model, 0, len(byID))
	for _, m := range byID {
		models = append(models, m)
	}
	return models, nil
}

// FindModel returns the note type with the given name.
func (db *DB) FindModel(ctx context.Context, name string) (*domain.Model, error) {
	models, err := db.Models(ctx)
	if err != nil {
		return nil, err
	}

	var found *domain.Model
	for i := range models {
		if models[i].Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("note type %q is ambiguous: ids %d and %d", name, found.ID, models[i].ID)
		}
		found = &models[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no note type named %q", domain.ErrSchemaNotFound, name)
	}
	return found, nil
}
