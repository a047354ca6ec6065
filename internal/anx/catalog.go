package anx

import "anx-go/internal/model"

// CatalogStore provides typed access to the tb_books catalog table.
// Every mutating method executes inside a single transaction: the row change
// and its invariant checks either both take effect or neither is visible.
// Implementations wrap their failures with the sentinel errors of this
// package (ErrConstraintViolation, ErrNotFound, ErrStorageUnavailable).
type CatalogStore interface {
	// Insert creates a new catalog row and returns its assigned id.
	// Fails with ErrConstraintViolation if FilePath or ContentHash collides
	// with an existing non-deleted row.
	Insert(book *model.Book) (int64, error)

	// GetByID returns the row with the given id, including soft-deleted
	// rows. Returns (nil, nil) when no such row exists.
	GetByID(id int64) (*model.Book, error)

	// FindActiveByHash returns the non-deleted row with the given content
	// hash, or (nil, nil) when none exists.
	FindActiveByHash(hash string) (*model.Book, error)

	// ActivePathExists reports whether a non-deleted row references the
	// given book file path.
	ActivePathExists(path string) (bool, error)

	// ListActive returns all non-deleted rows ordered by insertion (id ASC)
	// for deterministic listings.
	ListActive() ([]*model.Book, error)

	// Update applies a partial update to a non-deleted row and refreshes
	// update_time. Fails with ErrNotFound if the id is absent or deleted.
	Update(id int64, fields *model.BookUpdate) error

	// SoftDelete marks a row deleted and refreshes update_time. Deleting an
	// already-deleted or absent id is a no-op success.
	SoftDelete(id int64) error

	// TotalReadingTime sums tb_reading_time seconds for a book. A missing
	// or empty log yields zero; the table is owned by the reading client.
	TotalReadingTime(bookID int64) (int64, error)

	// CheckStatus verifies the catalog is reachable and its schema is at the
	// expected version. Run once after opening, before declaring the device
	// connected.
	CheckStatus() error

	// Close closes the underlying catalog connection.
	Close() error
}
