package domain

import "github.com/google/uuid"

// generateID returns a random UUID for tasks and session records.
func generateID() string {
	return uuid.NewString()
}
