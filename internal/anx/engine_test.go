package anx_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"anx-go/internal/anx"
	"anx-go/internal/model"
	"anx-go/internal/testutil"
)

func addRequest(title, author string, content []byte) anx.AddRequest {
	return anx.AddRequest{
		Title:     title,
		Author:    author,
		Extension: "epub",
		Book:      content,
	}
}

func TestEngine_Add(t *testing.T) {
	t.Run("round-trips through the listing", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)

		content := []byte("the book bytes")
		book, err := engine.Add(addRequest("Dune", "Frank Herbert", content))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		if book.ID == 0 {
			t.Error("Add() did not assign an id")
		}
		if book.FilePath != "file/Dune - Frank Herbert.epub" {
			t.Errorf("FilePath = %q", book.FilePath)
		}
		if book.ContentHash != anx.ContentHash(content) {
			t.Errorf("ContentHash = %q, want hash of content", book.ContentHash)
		}

		books, err := engine.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(books) != 1 {
			t.Fatalf("List() returned %d books, want 1", len(books))
		}
		if books[0].Title != "Dune" || books[0].Author != "Frank Herbert" {
			t.Errorf("listed book = %q by %q", books[0].Title, books[0].Author)
		}

		stored := files.Content(book.FilePath)
		if anx.ContentHash(stored) != book.ContentHash {
			t.Error("stored file content does not match the cataloged hash")
		}
	})

	t.Run("stores the cover when supplied", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)

		book, err := engine.Add(anx.AddRequest{
			Title:     "Dune",
			Author:    "Frank Herbert",
			Extension: "epub",
			Book:      []byte("book"),
			Cover:     []byte("jpeg bytes"),
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		if book.CoverPath != "cover/Dune - Frank Herbert.jpg" {
			t.Errorf("CoverPath = %q", book.CoverPath)
		}
		if files.Content(book.CoverPath) == nil {
			t.Error("cover was not written")
		}
	})

	t.Run("rejects duplicate content regardless of metadata", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)

		content := []byte("identical bytes")
		if _, err := engine.Add(addRequest("First", "Author A", content)); err != nil {
			t.Fatalf("first Add() error = %v", err)
		}

		_, err := engine.Add(addRequest("Second", "Author B", content))
		if !errors.Is(err, anx.ErrDuplicateContent) {
			t.Fatalf("second Add() error = %v, want ErrDuplicateContent", err)
		}

		// No second file may have been written.
		paths, _ := files.List("file")
		if len(paths) != 1 {
			t.Errorf("file/ contains %d files after rejected duplicate, want 1", len(paths))
		}
	})

	t.Run("disambiguates colliding paths with a numeric suffix", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		first, err := engine.Add(addRequest("X", "Y", []byte("content a")))
		if err != nil {
			t.Fatalf("first Add() error = %v", err)
		}
		second, err := engine.Add(addRequest("X", "Y", []byte("content b")))
		if err != nil {
			t.Fatalf("second Add() error = %v", err)
		}

		if first.FilePath != "file/X - Y.epub" {
			t.Errorf("first FilePath = %q", first.FilePath)
		}
		if second.FilePath != "file/X - Y (1).epub" {
			t.Errorf("second FilePath = %q", second.FilePath)
		}
	})

	t.Run("no two active records ever share hash or path", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		for i := 0; i < 10; i++ {
			content := []byte(fmt.Sprintf("content %d", i%5))
			engine.Add(addRequest("Same Title", "Same Author", content))
		}

		books, err := engine.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		hashes := make(map[string]bool)
		paths := make(map[string]bool)
		for _, b := range books {
			if hashes[b.ContentHash] {
				t.Errorf("duplicate hash among active records: %s", b.ContentHash)
			}
			if paths[b.FilePath] {
				t.Errorf("duplicate path among active records: %s", b.FilePath)
			}
			hashes[b.ContentHash] = true
			paths[b.FilePath] = true
		}
	})

	t.Run("continues without cover when the cover write fails", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)
		files.FailCoverWrites = true

		book, err := engine.Add(anx.AddRequest{
			Title:     "Dune",
			Author:    "Frank Herbert",
			Extension: "epub",
			Book:      []byte("book"),
			Cover:     []byte("jpeg bytes"),
		})
		if err != nil {
			t.Fatalf("Add() error = %v, cover failure must not abort the add", err)
		}
		if book.CoverPath != "" {
			t.Errorf("CoverPath = %q, want empty after failed cover write", book.CoverPath)
		}
	})

	t.Run("validates metadata and format", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		cases := []struct {
			name string
			req  anx.AddRequest
		}{
			{"empty title", anx.AddRequest{Author: "A", Extension: "epub", Book: []byte("x")}},
			{"empty author", anx.AddRequest{Title: "T", Extension: "epub", Book: []byte("x")}},
			{"empty book", anx.AddRequest{Title: "T", Author: "A", Extension: "epub"}},
			{"unsupported format", anx.AddRequest{Title: "T", Author: "A", Extension: "exe", Book: []byte("x")}},
		}
		for _, tc := range cases {
			if _, err := engine.Add(tc.req); !errors.Is(err, anx.ErrInvalidMetadata) {
				t.Errorf("%s: Add() error = %v, want ErrInvalidMetadata", tc.name, err)
			}
		}
	})

	t.Run("fails with IngestFailed when the medium rejects the write", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)
		files.FailWrites = true

		_, err := engine.Add(addRequest("T", "A", []byte("x")))
		if !errors.Is(err, anx.ErrIngestFailed) {
			t.Fatalf("Add() error = %v, want ErrIngestFailed", err)
		}

		books, _ := engine.List()
		if len(books) != 0 {
			t.Error("catalog gained a row despite the failed write")
		}
	})
}

// insertFailCatalog simulates losing the uniqueness race at insert time:
// the pre-checks pass but the constraint rejects the row.
type insertFailCatalog struct {
	anx.CatalogStore
}

func (c *insertFailCatalog) Insert(*model.Book) (int64, error) {
	return 0, fmt.Errorf("inserting book: %w", anx.ErrConstraintViolation)
}

func TestEngine_Add_CompensatesFailedInsert(t *testing.T) {
	_, cat, files, clock := testutil.NewTestEngine(t)
	engine := anx.NewEngine(&insertFailCatalog{cat}, files, anx.NewNopLogger(), clock)

	_, err := engine.Add(anx.AddRequest{
		Title:     "Dune",
		Author:    "Frank Herbert",
		Extension: "epub",
		Book:      []byte("book"),
		Cover:     []byte("jpeg"),
	})
	if !errors.Is(err, anx.ErrConstraintViolation) {
		t.Fatalf("Add() error = %v, want ErrConstraintViolation", err)
	}

	// The compensating deletes must have removed the just-written files.
	for _, subdir := range []string{"file", "cover"} {
		paths, _ := files.List(subdir)
		if len(paths) != 0 {
			t.Errorf("%s/ still contains %v after compensation", subdir, paths)
		}
	}
}

func TestEngine_Delete(t *testing.T) {
	t.Run("removes row and files", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)

		book, err := engine.Add(anx.AddRequest{
			Title:     "Dune",
			Author:    "Frank Herbert",
			Extension: "epub",
			Book:      []byte("book"),
			Cover:     []byte("jpeg"),
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		if err := engine.Delete(book.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if exists, _ := files.Exists(book.FilePath); exists {
			t.Error("book file still present after delete")
		}
		if exists, _ := files.Exists(book.CoverPath); exists {
			t.Error("cover file still present after delete")
		}

		books, _ := engine.List()
		if len(books) != 0 {
			t.Errorf("List() returned %d books after delete, want 0", len(books))
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		book, err := engine.Add(addRequest("Dune", "Frank Herbert", []byte("book")))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		if err := engine.Delete(book.ID); err != nil {
			t.Fatalf("first Delete() error = %v", err)
		}
		if err := engine.Delete(book.ID); err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if err := engine.Delete(99999); err != nil {
			t.Fatalf("Delete() of unknown id error = %v", err)
		}
	})

	t.Run("succeeds when files are already gone", func(t *testing.T) {
		engine, _, files, _ := testutil.NewTestEngine(t)

		book, err := engine.Add(addRequest("Dune", "Frank Herbert", []byte("book")))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		// Simulate a prior partial failure that already removed the file.
		files.DeleteBook(book.FilePath)

		if err := engine.Delete(book.ID); err != nil {
			t.Fatalf("Delete() error = %v, missing file must be non-fatal", err)
		}
	})

	t.Run("frees the hash and path for re-adding", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		content := []byte("book")
		book, err := engine.Add(addRequest("Dune", "Frank Herbert", content))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := engine.Delete(book.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		// The soft-deleted duplicate may linger; a fresh add must succeed.
		again, err := engine.Add(addRequest("Dune", "Frank Herbert", content))
		if err != nil {
			t.Fatalf("re-Add() after delete error = %v", err)
		}
		if again.ID == book.ID {
			t.Error("re-added book reused the deleted id")
		}
	})
}

func TestEngine_UpdateMetadata(t *testing.T) {
	rating := 4.5

	t.Run("changes fields and refreshes update_time only", func(t *testing.T) {
		engine, cat, _, clock := testutil.NewTestEngine(t)

		book, err := engine.Add(addRequest("Dune", "Frank Herbert", []byte("book")))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		clock.Advance(time.Hour)
		if err := engine.UpdateMetadata(book.ID, &model.BookUpdate{Rating: &rating}); err != nil {
			t.Fatalf("UpdateMetadata() error = %v", err)
		}

		updated, err := cat.GetByID(book.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if updated.Rating != 4.5 {
			t.Errorf("Rating = %v, want 4.5", updated.Rating)
		}
		if !updated.UpdateTime.After(updated.CreateTime) {
			t.Error("UpdateTime did not advance past CreateTime")
		}
		if updated.FilePath != book.FilePath {
			t.Errorf("FilePath changed: %q -> %q", book.FilePath, updated.FilePath)
		}
		if updated.ContentHash != book.ContentHash {
			t.Errorf("ContentHash changed: %q -> %q", book.ContentHash, updated.ContentHash)
		}
	})

	t.Run("title change does not rename the file", func(t *testing.T) {
		engine, cat, files, _ := testutil.NewTestEngine(t)

		book, err := engine.Add(addRequest("Old Title", "Author", []byte("book")))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		newTitle := "Completely Different Title"
		if err := engine.UpdateMetadata(book.ID, &model.BookUpdate{Title: &newTitle}); err != nil {
			t.Fatalf("UpdateMetadata() error = %v", err)
		}

		updated, _ := cat.GetByID(book.ID)
		if updated.Title != newTitle {
			t.Errorf("Title = %q, want %q", updated.Title, newTitle)
		}
		if updated.FilePath != book.FilePath {
			t.Error("path moved on title change; paths are fixed at ingestion")
		}
		if exists, _ := files.Exists(book.FilePath); !exists {
			t.Error("original file disappeared after title change")
		}
	})

	t.Run("fails NotFound for unknown and deleted ids", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		if err := engine.UpdateMetadata(42, &model.BookUpdate{Rating: &rating}); !errors.Is(err, anx.ErrNotFound) {
			t.Errorf("UpdateMetadata(unknown) error = %v, want ErrNotFound", err)
		}

		book, err := engine.Add(addRequest("Dune", "Frank Herbert", []byte("book")))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		engine.Delete(book.ID)

		if err := engine.UpdateMetadata(book.ID, &model.BookUpdate{Rating: &rating}); !errors.Is(err, anx.ErrNotFound) {
			t.Errorf("UpdateMetadata(deleted) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects invalid updates", func(t *testing.T) {
		engine, _, _, _ := testutil.NewTestEngine(t)

		book, err := engine.Add(addRequest("Dune", "Frank Herbert", []byte("book")))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		empty := ""
		over := 1.5
		cases := []*model.BookUpdate{
			nil,
			{},
			{Title: &empty},
			{ReadingPercentage: &over},
		}
		for i, fields := range cases {
			if err := engine.UpdateMetadata(book.ID, fields); !errors.Is(err, anx.ErrInvalidMetadata) {
				t.Errorf("case %d: error = %v, want ErrInvalidMetadata", i, err)
			}
		}
	})
}
