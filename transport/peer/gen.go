package peer

import "github.com/google/uuid"

// GenerateSessionID - generates the identifier published by the host.
func GenerateSessionID() string {
	return uuid.NewString()
}
