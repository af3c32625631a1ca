package types

import "github.com/google/uuid"

// ID is a UUID wrapper for type safety, used to correlate a submission
// across log lines, API responses and the exported report
type ID string

// NewID generates a new random ID
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty
func (id ID) IsZero() bool {
	return id == ""
}
