package anx

import (
	"errors"
	"fmt"
)

// Inconsistency kinds reported by Verify.
const (
	KindMissingBook  = "missing-book"  // active row, book file absent
	KindEmptyBook    = "empty-book"    // active row, book file empty
	KindMissingCover = "missing-cover" // active row with cover_path, file absent
	KindOrphanFile   = "orphan-file"   // file on disk referenced by no active row
)

// Inconsistency is one divergence between the catalog and the file tree.
type Inconsistency struct {
	Kind   string
	Path   string
	BookID int64 // 0 for orphan files
}

func (i *Inconsistency) String() string {
	if i.BookID != 0 {
		return fmt.Sprintf("%s: %s (book %d)", i.Kind, i.Path, i.BookID)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Path)
}

// Verify performs the startup consistency sweep: it reconciles active
// catalog rows against the file tree and reports every divergence without
// mutating either store. Missing or empty book files break the engine's
// core invariant; orphan files are leftovers of partial failures and are
// safe to remove externally.
func (e *Engine) Verify() ([]*Inconsistency, error) {
	books, err := e.catalog.ListActive()
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	var issues []*Inconsistency
	referenced := make(map[string]bool, 2*len(books))

	for _, b := range books {
		referenced[b.FilePath] = true
		size, err := e.files.Size(b.FilePath)
		switch {
		case errors.Is(err, ErrNotFound):
			issues = append(issues, &Inconsistency{Kind: KindMissingBook, Path: b.FilePath, BookID: b.ID})
		case err != nil:
			return nil, fmt.Errorf("checking %s: %w", b.FilePath, err)
		case size == 0:
			issues = append(issues, &Inconsistency{Kind: KindEmptyBook, Path: b.FilePath, BookID: b.ID})
		}

		if b.CoverPath == "" {
			continue
		}
		referenced[b.CoverPath] = true
		exists, err := e.files.Exists(b.CoverPath)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", b.CoverPath, err)
		}
		if !exists {
			issues = append(issues, &Inconsistency{Kind: KindMissingCover, Path: b.CoverPath, BookID: b.ID})
		}
	}

	for _, subdir := range []string{bookDir, coverDir} {
		paths, err := e.files.List(subdir)
		if err != nil {
			return nil, fmt.Errorf("listing %s/: %w", subdir, err)
		}
		for _, p := range paths {
			if !referenced[p] {
				issues = append(issues, &Inconsistency{Kind: KindOrphanFile, Path: p})
			}
		}
	}

	if len(issues) > 0 {
		e.logger.Warn("consistency sweep found issues", "count", len(issues))
	}
	return issues, nil
}
