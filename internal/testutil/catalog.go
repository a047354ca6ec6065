package testutil

import (
	"testing"

	"anx-go/internal/anx"
	"anx-go/internal/catalog"
)

// NewTestCatalog creates an in-memory SQLite catalog with the schema
// applied. The catalog is automatically closed when the test completes.
func NewTestCatalog(t *testing.T, clock anx.Clock) *catalog.SQLiteCatalog {
	t.Helper()

	cat, err := catalog.NewSQLiteCatalog(":memory:", clock)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	t.Cleanup(func() {
		cat.Close()
	})

	return cat
}
