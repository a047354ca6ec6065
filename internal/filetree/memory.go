package filetree

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"anx-go/internal/anx"
)

// MemoryFileTree is an in-memory implementation of anx.FileTreeStore,
// useful for testing. Safe for concurrent use.
type MemoryFileTree struct {
	mu    sync.RWMutex
	files map[string][]byte // data-relative path -> content

	// FailWrites makes every write fail, simulating an unreachable medium.
	FailWrites bool

	// FailCoverWrites makes only cover writes fail, for exercising the
	// engine's best-effort cover handling.
	FailCoverWrites bool
}

// NewMemoryFileTree creates an empty in-memory file tree.
func NewMemoryFileTree() *MemoryFileTree {
	return &MemoryFileTree{files: make(map[string][]byte)}
}

func (t *MemoryFileTree) WriteBook(path string, r io.Reader, size int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.FailWrites {
		return fmt.Errorf("write %s: %w", path, anx.ErrStorageUnavailable)
	}
	if _, ok := t.files[path]; ok {
		return fmt.Errorf("%w: %s", anx.ErrAlreadyExists, path)
	}
	return t.store(path, r, size)
}

func (t *MemoryFileTree) ReplaceBook(path string, r io.Reader, size int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.FailWrites {
		return fmt.Errorf("write %s: %w", path, anx.ErrStorageUnavailable)
	}
	return t.store(path, r, size)
}

func (t *MemoryFileTree) WriteCover(path string, r io.Reader, size int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.FailWrites || t.FailCoverWrites {
		return fmt.Errorf("write %s: %w", path, anx.ErrStorageUnavailable)
	}
	return t.store(path, r, size)
}

func (t *MemoryFileTree) store(path string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}
	t.files[path] = data
	return nil
}

func (t *MemoryFileTree) DeleteBook(path string) error  { return t.delete(path) }
func (t *MemoryFileTree) DeleteCover(path string) error { return t.delete(path) }

func (t *MemoryFileTree) delete(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.files[path]; !ok {
		return fmt.Errorf("%w: %s", anx.ErrNotFound, path)
	}
	delete(t.files, path)
	return nil
}

func (t *MemoryFileTree) Exists(path string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.files[path]
	return ok, nil
}

func (t *MemoryFileTree) Size(path string) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	data, ok := t.files[path]
	if !ok {
		return 0, fmt.Errorf("%w: %s", anx.ErrNotFound, path)
	}
	return int64(len(data)), nil
}

func (t *MemoryFileTree) List(subdir string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var paths []string
	for p := range t.files {
		if strings.HasPrefix(p, subdir+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (t *MemoryFileTree) Free() (free int64, total int64, err error) {
	return 1 << 30, 1 << 30, nil
}

// Content returns the stored bytes at path, or nil if absent. Test helper.
func (t *MemoryFileTree) Content(path string) []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.files[path]
}

// Compile-time check that MemoryFileTree implements anx.FileTreeStore.
var _ anx.FileTreeStore = (*MemoryFileTree)(nil)
