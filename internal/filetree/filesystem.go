package filetree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"anx-go/internal/anx"
)

// FilesystemFileTree implements anx.FileTreeStore on the library's data/
// directory:
//
//	<data>/
//	  file/    (book files)
//	  cover/   (cover images)
//
// The medium may be a remote mount; every failure other than "not found" is
// surfaced as ErrStorageUnavailable.
type FilesystemFileTree struct {
	root string // the data/ directory
}

// NewFilesystemFileTree creates a file tree rooted at dataRoot, creating the
// managed subdirectories if needed.
func NewFilesystemFileTree(dataRoot string) (*FilesystemFileTree, error) {
	for _, sub := range []string{"file", "cover"} {
		if err := os.MkdirAll(filepath.Join(dataRoot, sub), 0755); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w: %v", sub, anx.ErrStorageUnavailable, err)
		}
	}
	return &FilesystemFileTree{root: dataRoot}, nil
}

// Root returns the data/ directory this store manages.
func (t *FilesystemFileTree) Root() string {
	return t.root
}

func (t *FilesystemFileTree) WriteBook(path string, r io.Reader, size int64) error {
	dest, err := t.resolve(path, "file")
	if err != nil {
		return err
	}

	// Create-only: the path policy guarantees a free path, so an occupied
	// target means unrelated content landed here.
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s", anx.ErrAlreadyExists, path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w: %v", path, anx.ErrStorageUnavailable, err)
	}

	return t.writeFile(dest, r, size)
}

func (t *FilesystemFileTree) ReplaceBook(path string, r io.Reader, size int64) error {
	dest, err := t.resolve(path, "file")
	if err != nil {
		return err
	}
	return t.writeFile(dest, r, size)
}

func (t *FilesystemFileTree) WriteCover(path string, r io.Reader, size int64) error {
	dest, err := t.resolve(path, "cover")
	if err != nil {
		return err
	}
	return t.writeFile(dest, r, size)
}

func (t *FilesystemFileTree) DeleteBook(path string) error {
	return t.delete(path, "file")
}

func (t *FilesystemFileTree) DeleteCover(path string) error {
	return t.delete(path, "cover")
}

func (t *FilesystemFileTree) Exists(path string) (bool, error) {
	full, err := t.resolveAny(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w: %v", path, anx.ErrStorageUnavailable, err)
	}
	return true, nil
}

func (t *FilesystemFileTree) Size(path string) (int64, error) {
	full, err := t.resolveAny(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", anx.ErrNotFound, path)
		}
		return 0, fmt.Errorf("stat %s: %w: %v", path, anx.ErrStorageUnavailable, err)
	}
	return info.Size(), nil
}

func (t *FilesystemFileTree) List(subdir string) ([]string, error) {
	if subdir != "file" && subdir != "cover" {
		return nil, fmt.Errorf("unmanaged subdirectory: %s", subdir)
	}

	entries, err := os.ReadDir(filepath.Join(t.root, subdir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s/: %w: %v", subdir, anx.ErrStorageUnavailable, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, subdir+"/"+entry.Name())
	}
	return paths, nil
}

func (t *FilesystemFileTree) Free() (free int64, total int64, err error) {
	free, total, err = diskUsage(t.root)
	if err != nil {
		return 0, 0, fmt.Errorf("querying disk usage: %w: %v", anx.ErrStorageUnavailable, err)
	}
	return free, total, nil
}

func (t *FilesystemFileTree) delete(path, wantSubdir string) error {
	full, err := t.resolve(path, wantSubdir)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", anx.ErrNotFound, path)
		}
		return fmt.Errorf("removing %s: %w: %v", path, anx.ErrStorageUnavailable, err)
	}
	return nil
}

// writeFile writes data to dest via a temp file in the same directory and an
// atomic rename, so a torn write never leaves a partial file at dest.
func (t *FilesystemFileTree) writeFile(dest string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w: %v", anx.ErrStorageUnavailable, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing data: %w: %v", anx.ErrStorageUnavailable, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w: %v", anx.ErrStorageUnavailable, err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file: %w: %v", anx.ErrStorageUnavailable, err)
	}

	success = true
	return nil
}

// resolve validates a data-relative path against the expected subdirectory
// and returns the absolute path.
func (t *FilesystemFileTree) resolve(path, wantSubdir string) (string, error) {
	if !strings.HasPrefix(path, wantSubdir+"/") {
		return "", fmt.Errorf("path %q is not under %s/", path, wantSubdir)
	}
	return t.resolveAny(path)
}

// resolveAny validates a data-relative path stays inside the managed tree.
func (t *FilesystemFileTree) resolveAny(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("path %q escapes the data directory", path)
	}
	return filepath.Join(t.root, clean), nil
}

// Compile-time check that FilesystemFileTree implements anx.FileTreeStore.
var _ anx.FileTreeStore = (*FilesystemFileTree)(nil)
