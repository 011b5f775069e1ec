package utils

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const roomIDLength = 6

// GenerateRoomID returns a short human-shareable room identifier.
// Ambiguous characters (0/O, 1/I) are excluded from the alphabet.
func GenerateRoomID() string {
	b := make([]byte, roomIDLength)
	rand.Read(b)
	for i := range b {
		b[i] = roomIDAlphabet[int(b[i])%len(roomIDAlphabet)]
	}
	return string(b)
}

// GenerateAgentID returns a unique identifier for a host or viewer agent.
func GenerateAgentID() string {
	return uuid.NewString()
}
