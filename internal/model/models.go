package model

import "time"

// Book represents one row of tb_books, the catalog table shared with the
// reading client. Path fields are relative to the library's data/ directory.
type Book struct {
	ID                int64
	Title             string
	Author            string
	FilePath          string // under file/, unique among non-deleted rows
	CoverPath         string // under cover/, empty when the book has no cover
	ContentHash       string // MD5 of the book file, unique among non-deleted rows
	CreateTime        time.Time
	UpdateTime        time.Time
	LastReadPosition  string // opaque, owned by the reading client
	ReadingPercentage float64
	IsDeleted         bool
	Rating            float64
	GroupID           int64
	Description       string
}

// BookUpdate is a typed partial update for a Book. Nil fields are left
// untouched. Path and hash fields are deliberately absent: once assigned at
// ingestion they never change through metadata updates.
type BookUpdate struct {
	Title             *string
	Author            *string
	LastReadPosition  *string
	ReadingPercentage *float64
	Rating            *float64
	GroupID           *int64
	Description       *string
}

// Empty returns true if the update would change nothing.
func (u *BookUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.LastReadPosition == nil &&
		u.ReadingPercentage == nil && u.Rating == nil && u.GroupID == nil &&
		u.Description == nil
}

// ReadingTimeEntry represents one row of tb_reading_time: seconds read for one
// book on one day. The table is owned by the reading client; the engine only
// reads and aggregates it.
type ReadingTimeEntry struct {
	ID                 int64
	BookID             int64
	Date               string
	ReadingTimeSeconds int64
}
