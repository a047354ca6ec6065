package anx

import (
	"crypto/md5"
	"encoding/hex"
)

// ContentHash returns the MD5 checksum of data as a lowercase hex string.
// The catalog's file_md5 column and every other client of the library use
// MD5 for deduplication, so the engine must produce the identical digest.
// Deterministic over content only; metadata never participates.
func ContentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
