package anx

import (
	"errors"
	"io"
)

// ErrAlreadyExists is reported by FileTreeStore create-only writes when the
// target path is already occupied. The engine's path policy makes this a
// race-only condition; it is classified under ErrIngestFailed when surfaced.
var ErrAlreadyExists = errors.New("path already occupied")

// FileTreeStore abstracts the two managed subdirectories of the library's
// data/ directory: file/ for book files and cover/ for cover images.
// All paths are relative to data/ and carry the file/ or cover/ prefix,
// matching the catalog's path columns.
//
// Implementations wrap I/O failures with ErrStorageUnavailable and map a
// missing path on read/delete to ErrNotFound.
type FileTreeStore interface {
	// WriteBook stores a new book file. The write is create-only: it fails
	// with ErrAlreadyExists if the path is occupied. size is the number of
	// bytes that will be read from r.
	WriteBook(path string, r io.Reader, size int64) error

	// ReplaceBook overwrites (or creates) a book file. Used only for
	// explicit re-uploads, never by the regular add operation.
	ReplaceBook(path string, r io.Reader, size int64) error

	// WriteCover stores a cover image, replacing any previous file at the
	// path. Covers are best-effort; last write wins.
	WriteCover(path string, r io.Reader, size int64) error

	// DeleteBook removes a book file. A missing path is ErrNotFound; the
	// engine treats that as non-fatal during cleanup.
	DeleteBook(path string) error

	// DeleteCover removes a cover file. A missing path is ErrNotFound.
	DeleteCover(path string) error

	// Exists reports whether a file is present at the path.
	Exists(path string) (bool, error)

	// Size returns the byte size of the file at the path, or ErrNotFound.
	Size(path string) (int64, error)

	// List returns all data-relative paths currently present under the
	// given top-level subdirectory ("file" or "cover").
	List(subdir string) ([]string, error)

	// Free returns the free and total byte capacity of the medium backing
	// the store.
	Free() (free int64, total int64, err error)
}
