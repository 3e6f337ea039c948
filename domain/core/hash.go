package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
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

// Short returns the first 12 hex characters, enough for log lines.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeTableFingerprint hashes a header and its rows. Cells are separated by
// unit separators and rows by record separators so "a,b" and "ab" never collide.
func ComputeTableFingerprint(columns []string, rows [][]string) Hash {
	h := sha256.New()
	writeRecord(h, columns)
	for _, row := range rows {
		writeRecord(h, row)
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

func writeRecord(h hash.Hash, cells []string) {
	h.Write([]byte(strings.Join(cells, "\x1f")))
	h.Write([]byte{0x1e})
}
