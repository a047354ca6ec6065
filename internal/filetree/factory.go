package filetree

import (
	"fmt"
	"path/filepath"

	"anx-go/internal/anx"
	"anx-go/internal/config"
)

// NewFileTreeFromConfig creates a FileTreeStore implementation based on the
// configured file tree type.
func NewFileTreeFromConfig(cfg config.FileTreeConfig, libraryRoot string) (anx.FileTreeStore, error) {
	switch cfg.Type {
	case "", "filesystem":
		if libraryRoot == "" {
			return nil, fmt.Errorf("library_root required for filesystem file tree")
		}
		return NewFilesystemFileTree(filepath.Join(libraryRoot, "data"))
	case "memory":
		return NewMemoryFileTree(), nil
	default:
		return nil, fmt.Errorf("unknown file tree type: %s", cfg.Type)
	}
}
