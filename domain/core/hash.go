package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DatasetHash fingerprints the content of a loaded dataset. Saved views
// remember it so a restore can tell whether pinned records still refer to
// the same rows.
type DatasetHash Hash

func (h DatasetHash) String() string { return Hash(h).String() }

// ComputeDatasetHash hashes the header and every row in order, joined with the
// ASCII unit and record separators.
func ComputeDatasetHash(fields []string, rows [][]string) DatasetHash {
	var data strings.Builder
	data.WriteString(strings.Join(fields, "\x1f"))
	for _, row := range rows {
		data.WriteByte('\x1e')
		data.WriteString(strings.Join(row, "\x1f"))
	}
	return DatasetHash(NewHash([]byte(data.String())))
}
