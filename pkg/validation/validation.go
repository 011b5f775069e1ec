package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// RoomIDRegex validates room identifier format
	RoomIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// AgentIDRegex validates agent identifier format
	AgentIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateRoomID validates a room identifier
func ValidateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room ID is required")
	}
	if len(roomID) > 64 {
		return fmt.Errorf("room ID is too long (max 64 characters)")
	}
	if !RoomIDRegex.MatchString(roomID) {
		return fmt.Errorf("invalid room ID format")
	}
	return nil
}

// ValidateAgentID validates a host or viewer identifier
func ValidateAgentID(agentID string) error {
	if agentID == "" {
		return fmt.Errorf("agent ID is required")
	}
	if len(agentID) > 100 {
		return fmt.Errorf("agent ID is too long (max 100 characters)")
	}
	if !AgentIDRegex.MatchString(agentID) {
		return fmt.Errorf("invalid agent ID format")
	}
	return nil
}

// ValidateSessionDescription validates an offer or answer payload
func ValidateSessionDescription(sdpType, sdp string, maxBytes int) error {
	if strings.TrimSpace(sdp) == "" {
		return fmt.Errorf("sdp is required")
	}
	if maxBytes > 0 && len(sdp) > maxBytes {
		return fmt.Errorf("sdp is too large (max %d bytes)", maxBytes)
	}
	if sdpType != "offer" && sdpType != "answer" {
		return fmt.Errorf("invalid session description type (must be offer or answer)")
	}
	return nil
}

// ValidateCandidate validates a connectivity candidate payload
func ValidateCandidate(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return fmt.Errorf("candidate is required")
	}
	if len(candidate) > 2048 {
		return fmt.Errorf("candidate is too long (max 2048 characters)")
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
