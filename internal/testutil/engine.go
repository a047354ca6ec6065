package testutil

import (
	"testing"

	"anx-go/internal/anx"
	"anx-go/internal/filetree"
)

// NewTestEngine wires an Engine over an in-memory catalog and file tree with
// a fixed clock. Returns the engine plus the stores for direct inspection.
func NewTestEngine(t *testing.T) (*anx.Engine, anx.CatalogStore, *filetree.MemoryFileTree, *StubClock) {
	t.Helper()

	clock := FixedClock()
	cat := NewTestCatalog(t, clock)
	files := filetree.NewMemoryFileTree()
	engine := anx.NewEngine(cat, files, anx.NewNopLogger(), clock)

	return engine, cat, files, clock
}
