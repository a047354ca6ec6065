package anx_test

import (
	"testing"

	"anx-go/internal/anx"
)

func TestContentHash(t *testing.T) {
	t.Run("matches the reference MD5", func(t *testing.T) {
		// Known vector, verifies compatibility with file_md5 values written
		// by other clients.
		if got := anx.ContentHash([]byte("hello")); got != "5d41402abc4b2a76b9719d911017c592" {
			t.Errorf("ContentHash(\"hello\") = %q", got)
		}
	})

	t.Run("is deterministic over content only", func(t *testing.T) {
		a := anx.ContentHash([]byte("same bytes"))
		b := anx.ContentHash([]byte("same bytes"))
		if a != b {
			t.Errorf("identical content hashed differently: %q vs %q", a, b)
		}
		if anx.ContentHash([]byte("other bytes")) == a {
			t.Error("different content hashed identically")
		}
	})
}
