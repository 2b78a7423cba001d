package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a fresh UUID string, used for auction and bid
// identifiers.
func GenerateID() string {
	return uuid.New().String()
}
