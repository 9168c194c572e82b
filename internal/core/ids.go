package core

import "github.com/google/uuid"

// NewID returns a new time-ordered record id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
