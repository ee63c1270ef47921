package utils

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a new UUID v7 string.
func GenerateUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewRunID returns an identifier for one publish run, falling back to a v4 UUID.
func NewRunID() string {
	if id, err := GenerateUUID(); err == nil {
		return id
	}
	return uuid.NewString()
}
