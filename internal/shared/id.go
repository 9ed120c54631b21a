package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// IDLength is the length of a record identifier in hex characters.
const IDLength = 24

// ID identifies a stored record. The wire format is 24 lowercase hex
// characters (12 random bytes).
type ID string

// NewID generates a fresh random identifier.
func NewID() ID {
	buf := make([]byte, IDLength/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("shared: read random: %v", err))
	}
	return ID(hex.EncodeToString(buf))
}

// ParseID validates a raw identifier string.
func ParseID(raw string) (ID, error) {
	if len(raw) != IDLength {
		return "", fmt.Errorf("shared: id must be %d characters, got %d", IDLength, len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("shared: id is not hex encoded: %w", err)
	}
	return ID(raw), nil
}

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == ""
}
