package catalog

import (
	"fmt"
	"path/filepath"

	"anx-go/internal/anx"
	"anx-go/internal/config"
)

// CatalogFileName is the catalog file the reading client expects at the
// library root.
const CatalogFileName = "database7.db"

// NewCatalogFromConfig creates a CatalogStore implementation based on the
// configured catalog type.
func NewCatalogFromConfig(cfg config.CatalogConfig, libraryRoot string, clock anx.Clock) (anx.CatalogStore, error) {
	switch cfg.Type {
	case "", "sqlite":
		if libraryRoot == "" {
			return nil, fmt.Errorf("library_root required for sqlite catalog")
		}
		return NewSQLiteCatalog(filepath.Join(libraryRoot, CatalogFileName), clock)
	case "memory":
		return NewSQLiteCatalog(":memory:", clock)
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}
}
