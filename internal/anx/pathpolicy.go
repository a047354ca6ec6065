package anx

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	bookDir  = "file"
	coverDir = "cover"

	// maxBaseNameLen bounds the derived base name so the full path stays
	// within the limits of common remote-mounted filesystems.
	maxBaseNameLen = 120
)

// acceptedFormats are the book file extensions the reading client can open.
var acceptedFormats = map[string]bool{
	"epub": true,
	"mobi": true,
	"azw3": true,
	"fb2":  true,
	"txt":  true,
	"pdf":  true,
}

// AcceptedFormat reports whether ext (with or without a leading dot, any
// case) is a book format the device accepts.
func AcceptedFormat(ext string) bool {
	return acceptedFormats[NormalizeExtension(ext)]
}

// NormalizeExtension strips a leading dot and lowercases the extension.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// PathPolicy derives on-disk relative paths from book metadata. It is pure
// except for the read-only collision probe against the catalog.
type PathPolicy struct {
	catalog CatalogStore
}

func NewPathPolicy(catalog CatalogStore) *PathPolicy {
	return &PathPolicy{catalog: catalog}
}

// DerivePaths produces the book and cover paths for a "<title> - <author>"
// base name. On collision with an existing non-deleted row's path it appends
// a numeric suffix before the extension and retries until a free path is
// found. The cover path mirrors the final base name under cover/.
func (p *PathPolicy) DerivePaths(title, author, ext string) (bookPath, coverPath string, err error) {
	ext = NormalizeExtension(ext)
	if ext == "" {
		return "", "", fmt.Errorf("%w: missing file extension", ErrInvalidMetadata)
	}

	base, err := baseName(title, author)
	if err != nil {
		return "", "", err
	}

	candidate := base
	for n := 1; ; n++ {
		bookPath = bookDir + "/" + candidate + "." + ext
		exists, err := p.catalog.ActivePathExists(bookPath)
		if err != nil {
			return "", "", fmt.Errorf("probing path %q: %w", bookPath, err)
		}
		if !exists {
			coverPath = coverDir + "/" + candidate + ".jpg"
			return bookPath, coverPath, nil
		}
		candidate = fmt.Sprintf("%s (%d)", base, n)
	}
}

// baseName sanitizes and joins title and author into a bounded file name
// stem. Fails with ErrInvalidMetadata when either field is empty or reduces
// to nothing after sanitization.
func baseName(title, author string) (string, error) {
	t := SanitizeFileName(title)
	a := SanitizeFileName(author)
	if t == "" {
		return "", fmt.Errorf("%w: title is empty", ErrInvalidMetadata)
	}
	if a == "" {
		return "", fmt.Errorf("%w: author is empty", ErrInvalidMetadata)
	}

	base := t + " - " + a
	if len(base) > maxBaseNameLen {
		// Cut on a rune boundary so a multi-byte character is never split.
		cut := maxBaseNameLen
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = strings.TrimRight(base[:cut], " .")
	}
	return base, nil
}

// SanitizeFileName replaces characters that are illegal in file names on the
// storage medium with underscores and trims leading/trailing spaces and dots.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(`\/:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " .")
}
