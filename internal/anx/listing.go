package anx

import (
	"fmt"
	"time"
)

// ListingEntry is one entry in the device's virtual file listing.
type ListingEntry struct {
	Name      string // base file name, or directory name for virtual folders
	Path      string // data-relative path
	IsDir     bool
	Size      int64
	CreatedAt time.Time
	UpdatedAt time.Time
	BookID    int64 // catalog id backing the entry; 0 for virtual folders
}

// DeviceListing presents the catalog as a directory-like view: two top-level
// virtual folders (file, cover) whose entries are exactly the physical files
// referenced by non-deleted catalog rows.
type DeviceListing struct {
	Entries []ListingEntry
}

// Listing builds the device listing from the current catalog state. Sizes
// come from the file tree; a referenced but missing file is listed with size
// zero so the host still sees the catalog's view of the device.
func (e *Engine) Listing() (*DeviceListing, error) {
	books, err := e.catalog.ListActive()
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	listing := &DeviceListing{
		Entries: []ListingEntry{
			{Name: bookDir, Path: bookDir, IsDir: true},
			{Name: coverDir, Path: coverDir, IsDir: true},
		},
	}

	for _, b := range books {
		listing.Entries = append(listing.Entries, ListingEntry{
			Name:      baseOf(b.FilePath),
			Path:      b.FilePath,
			Size:      e.sizeOrZero(b.FilePath),
			CreatedAt: b.CreateTime,
			UpdatedAt: b.UpdateTime,
			BookID:    b.ID,
		})
		if b.CoverPath != "" {
			listing.Entries = append(listing.Entries, ListingEntry{
				Name:      baseOf(b.CoverPath),
				Path:      b.CoverPath,
				Size:      e.sizeOrZero(b.CoverPath),
				CreatedAt: b.CreateTime,
				UpdatedAt: b.UpdateTime,
				BookID:    b.ID,
			})
		}
	}

	return listing, nil
}

func (e *Engine) sizeOrZero(path string) int64 {
	size, err := e.files.Size(path)
	if err != nil {
		e.logger.Debug("size lookup failed", "path", path, "error", err)
		return 0
	}
	return size
}

// baseOf returns the last path element of a data-relative path.
func baseOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
