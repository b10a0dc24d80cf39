package domain

// FieldSeparator joins the field values of a note in schema order.
const FieldSeparator = "\x1f"

// Note is a raw note row from the collection.
type Note struct {
	ID      int64
	ModelID int64
	Fields  string
}

// Ease is the answer button pressed for a review, as stored in revlog.ease.
// 1: Again (forgotten)
// 2: Hard
// 3: Good
// 4: Easy
type Ease int

const (
	EaseAgain Ease = 1
	EaseHard  Ease = 2
	EaseGood  Ease = 3
	EaseEasy  Ease = 4
)
