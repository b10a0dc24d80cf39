// Package build runs the worksheet pipeline: resolve the kanji note type,
// select notes, decode their fields, inline stroke diagrams, render.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/kanjisheet/internal/domain"
	"github.com/conorfennell/kanjisheet/internal/media"
	"github.com/conorfennell/kanjisheet/internal/parser"
	"github.com/conorfennell/kanjisheet/internal/storage"
	"github.com/conorfennell/kanjisheet/internal/worksheet"
)

// Source is the read side of an Anki collection.
type Source interface {
	FindModel(ctx context.Context, name string) (*domain.Model, error)
	SelectNotes(ctx context.Context, q storage.NoteQuery) ([]domain.Note, error)
}

// Options configures one run.
type Options struct {
	// Since limits the worksheet to cards reviewed at or after it. Nil
	// selects every note of the kanji note type.
	Since *time.Time
	// OnlyForgotten keeps only reviews answered Again. Needs Since.
	OnlyForgotten bool
	MediaDirs     []string
	MissingMedia  media.Policy
	Output        string
	// Renderer defaults to the embedded worksheet template.
	Renderer *worksheet.Renderer
	Logger   *slog.Logger
}

// Result describes a written worksheet.
type Result struct {
	Output  string
	NoteIDs []int64
}

// Since returns the start of a review window of the given number of days.
// The first day is only 16 hours so a routine that drifts a little still
// does not pick up yesterday's reviews.
func Since(now time.Time, days int) time.Time {
	hours := (days-1)*24 + 16
	return now.Add(-time.Duration(hours) * time.Hour)
}

// Query builds the note query for a model and review window.
func Query(modelID int64, since *time.Time, onlyForgotten bool) storage.NoteQuery {
	q := storage.NoteQuery{ModelID: modelID}
	if since == nil {
		return q
	}
	minID := since.UnixMilli()
	q.MinReviewID = &minID
	if onlyForgotten {
		ease := domain.EaseAgain
		q.Ease = &ease
	}
	return q
}

// Run builds the worksheet and writes it to opts.Output. The output file is
// only touched once every earlier stage has succeeded.
func Run(ctx context.Context, src Source, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	model, err := src.FindModel(ctx, domain.KanjiModelName)
	if err != nil {
		return nil, err
	}
	schema, err := domain.NewSchema(*model)
	if err != nil {
		return nil, err
	}
	if !schema.Has(domain.StrokeDiagramField) {
		return nil, fmt.Errorf("%w: note type %q has no %q field",
			domain.ErrSchemaMismatch, model.Name, domain.StrokeDiagramField)
	}
	log.Debug("Resolved note type", "model_id", schema.ModelID, "fields", schema.Fields)

	if opts.OnlyForgotten && opts.Since == nil {
		log.Warn("Ignoring forgotten-only filter without a review window")
	}
	q := Query(schema.ModelID, opts.Since, opts.OnlyForgotten)

	notes, err := src.SelectNotes(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		log.Warn("No kanji notes selected", "model_id", schema.ModelID)
	}
	log.Info("Selected notes", "notes", len(notes), "filtered", q.Filtered(), "forgotten_only", q.Ease != nil)

	fields, err := parser.ParseNotes(notes, schema)
	if err != nil {
		return nil, err
	}

	inliner := media.NewInliner(opts.MediaDirs, opts.MissingMedia, log)
	if err := inliner.InlineAll(fields); err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		if renderer, err = worksheet.NewRenderer(); err != nil {
			return nil, err
		}
	}
	if err := renderer.WriteFile(opts.Output, fields); err != nil {
		return nil, err
	}

	ids := make([]int64, len(fields))
	for i, fm := range fields {
		ids[i] = fm.NoteID
	}
	log.Info("Worksheet written", "file", opts.Output, "notes", len(ids))

	return &Result{Output: opts.Output, NoteIDs: ids}, nil
}
