package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/kanjisheet/internal/domain"
)

// NoteQuery selects the notes of one note type. A nil MinReviewID selects
// every note of the type; otherwise only notes with a card reviewed at or
// after MinReviewID (milliseconds since the epoch) qualify, further limited
// to reviews answered with Ease when it is set.
type NoteQuery struct {
	ModelID     int64
	MinReviewID *int64
	Ease        *domain.Ease
}

// Filtered reports whether the query is restricted by review history.
func (q NoteQuery) Filtered() bool {
	return q.MinReviewID != nil
}

// reviewFilter returns the revlog condition of a filtered query with its
// bound arguments.
func (q NoteQuery) reviewFilter() (string, []any) {
	cond := `id >= ?`
	args := []any{*q.MinReviewID}
	if q.Ease != nil {
		cond += ` AND ease = ?`
		args = append(args, int(*q.Ease))
	}
	return cond, args
}

// ReviewedCardIDs returns the distinct ids of cards reviewed inside the
// query's window, sorted ascending.
func (db *DB) ReviewedCardIDs(ctx context.Context, q NoteQuery) ([]int64, error) {
	if !q.Filtered() {
		return nil, fmt.Errorf("review window is not set")
	}

	cond, args := q.reviewFilter()
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT cid FROM revlog WHERE `+cond+` ORDER BY cid`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review log: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read review log: %w", err)
	}
	return ids, nil
}

// SelectNotes returns the notes matching q ordered by note id. A filtered
// query whose window contains no reviews fails with domain.ErrEmptySelection.
// The reviewed cards are matched with a subquery, so the statement binds the
// same few arguments however many cards were reviewed.
func (db *DB) SelectNotes(ctx context.Context, q NoteQuery) ([]domain.Note, error) {
	if !q.Filtered() {
		return db.queryNotes(ctx, `
			SELECT id, mid, flds
			FROM notes WHERE mid = ?
			ORDER BY id
		`, q.ModelID)
	}

	cond, filterArgs := q.reviewFilter()

	var reviewed bool
	err := db.conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM revlog WHERE `+cond+`)`, filterArgs...).Scan(&reviewed)
	if err != nil {
		return nil, fmt.Errorf("failed to query review log: %w", err)
	}
	if !reviewed {
		return nil, fmt.Errorf("%w: no cards reviewed since %d", domain.ErrEmptySelection, *q.MinReviewID)
	}

	args := append([]any{q.ModelID}, filterArgs...)
	return db.queryNotes(ctx, `
		SELECT DISTINCT n.id, n.mid, n.flds
		FROM notes n
		JOIN cards c ON c.nid = n.id
		WHERE n.mid = ? AND c.id IN (SELECT cid FROM revlog WHERE `+cond+`)
		ORDER BY n.id
	`, args...)
}

func (db *DB) queryNotes(ctx context.Context, stmt string, args ...any) ([]domain.Note, error) {
	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.ModelID, &n.Fields); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}
	return notes, nil
}
