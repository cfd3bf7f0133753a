package organizer

import (
	"strings"

	"github.com/google/uuid"
)

// NewCorrelationID generates a turn correlation id of the form
// "CID-" + 12 hex characters.
func NewCorrelationID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CID-" + hex[:12]
}

// NewID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
// Used for store row ids.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
