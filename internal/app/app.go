package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"anx-go/internal/anx"
	"anx-go/internal/catalog"
	"anx-go/internal/config"
	"anx-go/internal/filetree"
	"anx-go/internal/model"
)

// DeviceInfo describes the virtual device to the host.
type DeviceInfo struct {
	Name        string
	Version     string
	DeviceID    string
	LibraryRoot string
	FreeBytes   int64
	TotalBytes  int64
}

// App is the application layer between the CLI and the synchronization
// engine. It constructs all dependencies from config, exposes operations
// that accept raw string inputs, and manages the catalog lifecycle on Close.
type App struct {
	cfg     *config.Config
	catalog anx.CatalogStore
	files   anx.FileTreeStore
	engine  *anx.Engine
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Add", "List"); it tags every
// log line of this invocation. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	if err := checkLibraryRoot(cfg); err != nil {
		return nil, err
	}

	files, err := filetree.NewFileTreeFromConfig(cfg.FileTree, cfg.LibraryRoot)
	if err != nil {
		return nil, fmt.Errorf("creating file tree: %w", err)
	}

	cat, err := catalog.NewCatalogFromConfig(cfg.Catalog, cfg.LibraryRoot, anx.RealClock{})
	if err != nil {
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	if err := cat.CheckStatus(); err != nil {
		cat.Close()
		return nil, fmt.Errorf("%w: catalog schema check: %v", anx.ErrStorageUnavailable, err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID+"/"+operation)
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	engine := anx.NewEngine(cat, files, &slogAdapter{l: logger}, anx.RealClock{})

	return &App{
		cfg:     cfg,
		catalog: cat,
		files:   files,
		engine:  engine,
		logFile: logFile,
	}, nil
}

// checkLibraryRoot verifies the configured library root is a reachable
// directory. The catalog file and data subdirectories are created on demand;
// the root itself must exist so a disconnected mount is caught early.
func checkLibraryRoot(cfg *config.Config) error {
	if cfg.FileTree.Type == "memory" && cfg.Catalog.Type == "memory" {
		return nil
	}
	if cfg.LibraryRoot == "" {
		return fmt.Errorf("%w: library_root is not configured", anx.ErrStorageUnavailable)
	}
	info, err := os.Stat(cfg.LibraryRoot)
	if err != nil {
		return fmt.Errorf("%w: library root %s: %v", anx.ErrStorageUnavailable, cfg.LibraryRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: library root %s is not a directory", anx.ErrStorageUnavailable, cfg.LibraryRoot)
	}
	return nil
}

// AddBook ingests the book file at rawPath. Empty title defaults to the file
// name stem and empty author to "Unknown", matching what hosts send for
// untagged files. coverPath optionally points at a JPEG to use as cover.
func (a *App) AddBook(rawPath, title, author, coverPath string) (*model.Book, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("reading book file: %w", err)
	}

	ext := filepath.Ext(rawPath)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(rawPath), ext)
	}
	if author == "" {
		author = "Unknown"
	}

	var cover []byte
	if coverPath != "" {
		cover, err = os.ReadFile(coverPath)
		if err != nil {
			return nil, fmt.Errorf("reading cover file: %w", err)
		}
	}

	return a.engine.Add(anx.AddRequest{
		Title:     title,
		Author:    author,
		Extension: ext,
		Book:      data,
		Cover:     cover,
	})
}

// DeleteBook removes a book from the device. Unknown ids are a no-op.
func (a *App) DeleteBook(id int64) error {
	return a.engine.Delete(id)
}

// UpdateBook applies a partial metadata update.
func (a *App) UpdateBook(id int64, fields *model.BookUpdate) error {
	return a.engine.UpdateMetadata(id, fields)
}

// ListBooks returns all active catalog rows.
func (a *App) ListBooks() ([]*model.Book, error) {
	return a.engine.List()
}

// Listing returns the device's virtual file listing.
func (a *App) Listing() (*anx.DeviceListing, error) {
	return a.engine.Listing()
}

// Verify runs the consistency sweep.
func (a *App) Verify() ([]*anx.Inconsistency, error) {
	return a.engine.Verify()
}

// ReadingTime returns the aggregated reading seconds for a book.
func (a *App) ReadingTime(id int64) (int64, error) {
	return a.engine.TotalReadingTime(id)
}

// Info returns the device information block for the host.
func (a *App) Info() (*DeviceInfo, error) {
	free, total, err := a.engine.FreeSpace()
	if err != nil {
		return nil, err
	}
	return &DeviceInfo{
		Name:        "ANX Virtual Device",
		Version:     "1.0.0",
		DeviceID:    a.cfg.DeviceID,
		LibraryRoot: a.cfg.LibraryRoot,
		FreeBytes:   free,
		TotalBytes:  total,
	}, nil
}

// Close closes the catalog connection and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.catalog.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
