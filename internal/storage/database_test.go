package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/kanjisheet/internal/domain"
	"github.com/conorfennell/kanjisheet/internal/storage/ankitest"
)

const (
	kanjiModelID = 1342697561419
	otherModelID = 1342697561420
)

func openCollection(t *testing.T, c *ankitest.Collection) *DB {
	t.Helper()
	db, err := Open(c.Path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	return db
}

func ptr[T any](v T) *T {
	return &v
}

// seed builds a collection with two kanji notes, one note of another type,
// and reviews at 1000 (Again), 2000 (Good), 3000 (Good).
func seed(t *testing.T) *ankitest.Collection {
	t.Helper()
	c := ankitest.New(t, "")
	c.AddModel(ankitest.KanjiModel(kanjiModelID, "kanji", domain.StrokeDiagramField)).
		AddModel(domain.Model{ID: otherModelID, Name: "Basic", Fields: []domain.Field{{Name: "Front"}, {Name: "Back", Ord: 1}}}).
		AddNote(10, kanjiModelID, "水", `<img src="water.png">`).
		AddNote(20, kanjiModelID, "火", `<img src="fire.png">`).
		AddNote(30, otherModelID, "front", "back").
		AddCard(100, 10).
		AddCard(101, 10).
		AddCard(200, 20).
		AddCard(300, 30).
		AddReview(1000, 100, domain.EaseAgain).
		AddReview(2000, 101, domain.EaseGood).
		AddReview(2500, 100, domain.EaseGood).
		AddReview(3000, 300, domain.EaseGood)
	return c
}

func TestOpen(t *testing.T) {
	t.Run("missing file is not created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "collection.anki2")
		_, err := Open(path)
		require.Error(t, err)
		assert.NoFileExists(t, path)
	})

	t.Run("connection is read-only", func(t *testing.T) {
		db := openCollection(t, seed(t))
		_, err := db.conn.Exec(`DELETE FROM notes`)
		assert.Error(t, err)
	})
}

func TestFindModel(t *testing.T) {
	ctx := context.Background()

	t.Run("finds the named model with ordered fields", func(t *testing.T) {
		c := ankitest.New(t, "")
		c.SetModelsJSON(`{
			"1": {"id": 1, "name": "Basic", "flds": [{"name": "Front", "ord": 0}]},
			"1342697561419": {"id": 1342697561419, "name": "NihongoShark.com: Kanji", "flds": [
				{"name": "meaning", "ord": 2},
				{"name": "kanji", "ord": 0},
				{"name": "strokeDiagram", "ord": 1}
			]}
		}`)
		db := openCollection(t, c)

		m, err := db.FindModel(ctx, domain.KanjiModelName)
		require.NoError(t, err)
		assert.Equal(t, int64(kanjiModelID), m.ID)
		assert.Equal(t, []string{"kanji", "strokeDiagram", "meaning"}, m.FieldNames())
	})

	t.Run("missing model", func(t *testing.T) {
		c := ankitest.New(t, "")
		c.AddModel(domain.Model{ID: 1, Name: "Basic", Fields: []domain.Field{{Name: "Front"}}})
		db := openCollection(t, c)

		_, err := db.FindModel(ctx, domain.KanjiModelName)
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	})

	t.Run("empty collection row", func(t *testing.T) {
		c := ankitest.New(t, "")
		c.Exec(`DELETE FROM col`)
		db := openCollection(t, c)

		_, err := db.FindModel(ctx, domain.KanjiModelName)
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	})

	t.Run("models kept outside the collection row", func(t *testing.T) {
		for _, raw := range []string{"", "  \n"} {
			c := ankitest.New(t, "")
			c.SetModelsJSON(raw)
			db := openCollection(t, c)

			_, err := db.FindModel(ctx, domain.KanjiModelName)
			assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
			assert.ErrorContains(t, err, "not stored in the col table")
		}
	})

	t.Run("malformed models json", func(t *testing.T) {
		c := ankitest.New(t, "")
		c.SetModelsJSON(`{not json`)
		db := openCollection(t, c)

		_, err := db.FindModel(ctx, domain.KanjiModelName)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSchemaNotFound)
	})
}

func TestSelectNotes(t *testing.T) {
	ctx := context.Background()
	db := openCollection(t, seed(t))

	testCases := []struct {
		name        string
		query       NoteQuery
		expectedIDs []int64
		expectedErr error
	}{
		{
			name:        "Unfiltered returns every note of the model",
			query:       NoteQuery{ModelID: kanjiModelID},
			expectedIDs: []int64{10, 20},
		},
		{
			name:        "Window includes reviews at the bound",
			query:       NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(2000))},
			expectedIDs: []int64{10},
		},
		{
			name:        "Two reviewed cards of one note yield one note",
			query:       NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(0))},
			expectedIDs: []int64{10},
		},
		{
			name:        "Forgotten only",
			query:       NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(0)), Ease: ptr(domain.EaseAgain)},
			expectedIDs: []int64{10},
		},
		{
			name:        "Reviews of other models are dropped",
			query:       NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(3000))},
			expectedIDs: nil,
		},
		{
			name:        "Empty window",
			query:       NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(5000))},
			expectedErr: domain.ErrEmptySelection,
		},
		{
			name:        "No forgotten cards in window",
			query:       NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(2000)), Ease: ptr(domain.EaseAgain)},
			expectedErr: domain.ErrEmptySelection,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notes, err := db.SelectNotes(ctx, tc.query)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)

			var ids []int64
			for _, n := range notes {
				assert.Equal(t, int64(kanjiModelID), n.ModelID)
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func TestSelectNotesManyReviewedCards(t *testing.T) {
	const reviewed = 40000

	c := ankitest.New(t, "")
	c.AddModel(ankitest.KanjiModel(kanjiModelID, "kanji", domain.StrokeDiagramField)).
		AddModel(domain.Model{ID: otherModelID, Name: "Basic", Fields: []domain.Field{{Name: "Front"}}}).
		AddNote(10, kanjiModelID, "水", `<img src="water.png">`).
		AddNote(20, kanjiModelID, "火", `<img src="fire.png">`).
		AddNote(30, otherModelID, "front").
		AddCard(200, 20).
		Exec(`
			WITH RECURSIVE seq(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM seq WHERE x < ?)
			INSERT INTO cards (id, nid) SELECT 1000000 + x, CASE x % 2 WHEN 0 THEN 10 ELSE 30 END FROM seq
		`, reviewed).
		Exec(`
			WITH RECURSIVE seq(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM seq WHERE x < ?)
			INSERT INTO revlog (id, cid, ease) SELECT 10000 + x, 1000000 + x, 3 FROM seq
		`, reviewed)
	db := openCollection(t, c)

	ids, err := db.ReviewedCardIDs(context.Background(), NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(0))})
	require.NoError(t, err)
	require.Len(t, ids, reviewed)

	notes, err := db.SelectNotes(context.Background(), NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(0))})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, int64(10), notes[0].ID)
}

func TestSelectNotesReturnsRawFields(t *testing.T) {
	db := openCollection(t, seed(t))

	notes, err := db.SelectNotes(context.Background(), NoteQuery{ModelID: kanjiModelID})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "水\x1f<img src=\"water.png\">", notes[0].Fields)
}

func TestReviewedCardIDs(t *testing.T) {
	ctx := context.Background()
	db := openCollection(t, seed(t))

	ids, err := db.ReviewedCardIDs(ctx, NoteQuery{ModelID: kanjiModelID, MinReviewID: ptr(int64(0))})
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101, 300}, ids)

	_, err = db.ReviewedCardIDs(ctx, NoteQuery{ModelID: kanjiModelID})
	assert.Error(t, err)
}
