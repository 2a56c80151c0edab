// Package random provides cryptographically random byte generation used for
// collision-resistant identifiers and temporary-file name suffixes.
package random

import (
	"crypto/rand"
	"fmt"
)

const (
	// CollisionResistantLength is the number of random bytes used when
	// collision resistance (e.g. for run identifiers) is required.
	CollisionResistantLength = 32
)

// New returns a byte slice of the specified length with cryptographically
// random contents.
func New(length int) ([]byte, error) {
	result := make([]byte, length)
	if _, err := rand.Read(result); err != nil {
		return nil, fmt.Errorf("unable to read random data: %w", err)
	}
	return result, nil
}
