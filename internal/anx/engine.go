package anx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"anx-go/internal/model"
)

// Engine is the synchronization engine: it translates the device operations
// (list, add, delete, update-metadata) into coordinated mutations of the
// catalog row, the book file and the optional cover file, preserving the
// invariant that every active catalog row has a non-empty backing file.
//
// The engine assumes a single active synchronization session; the catalog's
// uniqueness constraints are the authoritative guard against races, the
// engine's pre-checks only produce friendlier errors.
type Engine struct {
	catalog CatalogStore
	files   FileTreeStore
	paths   *PathPolicy
	logger  Logger
	clock   Clock
}

// NewEngine creates an Engine with the provided dependencies.
func NewEngine(catalog CatalogStore, files FileTreeStore, logger Logger, clock Clock) *Engine {
	return &Engine{
		catalog: catalog,
		files:   files,
		paths:   NewPathPolicy(catalog),
		logger:  logger,
		clock:   clock,
	}
}

// AddRequest carries the inputs of the add-book operation.
type AddRequest struct {
	Title     string
	Author    string
	Extension string // book file extension, e.g. "epub"
	Book      []byte
	Cover     []byte // optional JPEG bytes; nil means no cover
}

// Add ingests a new book: dedup check by content hash, path derivation,
// file write, best-effort cover write, then the catalog insert. If the
// insert fails the just-written files are removed again so the catalog
// stays the source of truth.
func (e *Engine) Add(req AddRequest) (*model.Book, error) {
	if err := validateAdd(&req); err != nil {
		return nil, err
	}

	hash := ContentHash(req.Book)
	existing, err := e.catalog.FindActiveByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("probing for duplicate content: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q already cataloged as id %d", ErrDuplicateContent, existing.Title, existing.ID)
	}

	bookPath, coverPath, err := e.paths.DerivePaths(req.Title, req.Author, req.Extension)
	if err != nil {
		return nil, err
	}

	// Nothing is committed to the catalog yet, so a failed write needs no
	// rollback.
	if err := e.files.WriteBook(bookPath, bytes.NewReader(req.Book), int64(len(req.Book))); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %w", ErrIngestFailed, bookPath, err)
	}

	coverWritten := false
	if len(req.Cover) > 0 {
		if err := e.files.WriteCover(coverPath, bytes.NewReader(req.Cover), int64(len(req.Cover))); err != nil {
			// Book ingestion is the primary contract; the cover is
			// best-effort.
			e.logger.Warn("cover write failed, continuing without cover", "path", coverPath, "error", err)
			coverPath = ""
		} else {
			coverWritten = true
		}
	} else {
		coverPath = ""
	}

	now := e.clock.Now()
	book := &model.Book{
		Title:            req.Title,
		Author:           req.Author,
		FilePath:         bookPath,
		CoverPath:        coverPath,
		ContentHash:      hash,
		CreateTime:       now,
		UpdateTime:       now,
		LastReadPosition: "",
	}

	id, err := e.catalog.Insert(book)
	if err != nil {
		e.compensateAdd(bookPath, coverPath, coverWritten)
		return nil, fmt.Errorf("inserting catalog row: %w", err)
	}
	book.ID = id

	e.logger.Info("book added", "id", id, "title", req.Title, "path", bookPath, "hash", hash)
	return book, nil
}

// compensateAdd removes the files written by a failed add. Attempted once;
// failures are logged, never escalated.
func (e *Engine) compensateAdd(bookPath, coverPath string, coverWritten bool) {
	if err := e.files.DeleteBook(bookPath); err != nil && !errors.Is(err, ErrNotFound) {
		e.logger.Error("compensating book delete failed", "path", bookPath, "error", err)
	}
	if coverWritten {
		if err := e.files.DeleteCover(coverPath); err != nil && !errors.Is(err, ErrNotFound) {
			e.logger.Error("compensating cover delete failed", "path", coverPath, "error", err)
		}
	}
}

// Delete removes a book from the device. The catalog row is soft-deleted
// first (the logical state is the source of truth), then the backing files
// are removed best-effort: a lingering orphan file is recoverable by a later
// verify sweep, a catalog row without its file is not.
// Deleting an unknown or already-deleted id is a no-op success.
func (e *Engine) Delete(id int64) error {
	book, err := e.catalog.GetByID(id)
	if err != nil {
		return fmt.Errorf("loading book %d: %w", id, err)
	}
	if book == nil || book.IsDeleted {
		e.logger.Debug("delete is a no-op", "id", id)
		return nil
	}

	if err := e.catalog.SoftDelete(id); err != nil {
		return fmt.Errorf("soft-deleting book %d: %w", id, err)
	}

	if err := e.files.DeleteBook(book.FilePath); err != nil {
		if errors.Is(err, ErrNotFound) {
			e.logger.Debug("book file already absent", "path", book.FilePath)
		} else {
			e.logger.Warn("book file cleanup failed, orphan remains", "path", book.FilePath, "error", err)
		}
	}
	if book.CoverPath != "" {
		if err := e.files.DeleteCover(book.CoverPath); err != nil {
			if errors.Is(err, ErrNotFound) {
				e.logger.Debug("cover file already absent", "path", book.CoverPath)
			} else {
				e.logger.Warn("cover file cleanup failed, orphan remains", "path", book.CoverPath, "error", err)
			}
		}
	}

	e.logger.Info("book deleted", "id", id, "title", book.Title)
	return nil
}

// UpdateMetadata applies a partial metadata update to an active book.
// Title and author remain freely editable as display text, but the on-disk
// path was fixed at ingestion and is never renamed here.
func (e *Engine) UpdateMetadata(id int64, fields *model.BookUpdate) error {
	if err := validateUpdate(fields); err != nil {
		return err
	}

	book, err := e.catalog.GetByID(id)
	if err != nil {
		return fmt.Errorf("loading book %d: %w", id, err)
	}
	if book == nil || book.IsDeleted {
		return fmt.Errorf("%w: book %d", ErrNotFound, id)
	}

	if err := e.catalog.Update(id, fields); err != nil {
		return fmt.Errorf("updating book %d: %w", id, err)
	}

	e.logger.Info("metadata updated", "id", id)
	return nil
}

// List returns all active books in insertion order.
func (e *Engine) List() ([]*model.Book, error) {
	books, err := e.catalog.ListActive()
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	return books, nil
}

// TotalReadingTime returns the aggregated reading seconds for an active book.
func (e *Engine) TotalReadingTime(id int64) (int64, error) {
	book, err := e.catalog.GetByID(id)
	if err != nil {
		return 0, fmt.Errorf("loading book %d: %w", id, err)
	}
	if book == nil || book.IsDeleted {
		return 0, fmt.Errorf("%w: book %d", ErrNotFound, id)
	}
	return e.catalog.TotalReadingTime(id)
}

// FreeSpace reports the free and total byte capacity of the library medium.
func (e *Engine) FreeSpace() (free int64, total int64, err error) {
	return e.files.Free()
}

func validateAdd(req *AddRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidMetadata)
	}
	if strings.TrimSpace(req.Author) == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidMetadata)
	}
	if len(req.Book) == 0 {
		return fmt.Errorf("%w: book file is empty", ErrInvalidMetadata)
	}
	if !AcceptedFormat(req.Extension) {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidMetadata, req.Extension)
	}
	return nil
}

func validateUpdate(fields *model.BookUpdate) error {
	if fields == nil || fields.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidMetadata)
	}
	if fields.Title != nil && strings.TrimSpace(*fields.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidMetadata)
	}
	if fields.Author != nil && strings.TrimSpace(*fields.Author) == "" {
		return fmt.Errorf("%w: author cannot be empty", ErrInvalidMetadata)
	}
	if fields.ReadingPercentage != nil && (*fields.ReadingPercentage < 0 || *fields.ReadingPercentage > 1) {
		return fmt.Errorf("%w: reading percentage must be within [0,1]", ErrInvalidMetadata)
	}
	return nil
}
