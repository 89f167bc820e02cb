// Package hashing computes the content signatures used to decide whether addon bytes changed.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/conn-castle/yaam/internal/messages"
)

// Hasher produces deterministic content signatures.
type Hasher interface {
	// Bytes returns the signature of data.
	Bytes(data []byte) string
	// File returns the signature of the file at path.
	File(path string) (string, error)
}

// SHA256 is the default Hasher: lowercase hex SHA-256.
type SHA256 struct{}

// Bytes returns the hex SHA-256 of data.
func (SHA256) Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// File streams the file at path through SHA-256.
func (SHA256) File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return Reader(f)
}

// Reader returns the hex SHA-256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf(messages.HashingReadFmt, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
