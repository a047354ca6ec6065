package anx

import "errors"

// Sentinel errors classifying every failure the engine can surface.
// Store implementations wrap their native failures with one of these so that
// callers can branch with errors.Is while still seeing the full cause chain.
var (
	// ErrDuplicateContent means a book with the same content hash is already
	// cataloged and active.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrConstraintViolation means a catalog uniqueness constraint rejected
	// an insert or update (the authoritative guard behind the pre-checks).
	ErrConstraintViolation = errors.New("catalog constraint violation")

	// ErrNotFound means the referenced record or file does not exist (or the
	// record is soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrIngestFailed means the book or cover bytes could not be written to
	// the file tree.
	ErrIngestFailed = errors.New("ingest failed")

	// ErrStorageUnavailable means the catalog file or the mounted data
	// directory is unreachable.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidMetadata means a required field is missing or malformed.
	ErrInvalidMetadata = errors.New("invalid metadata")
)
