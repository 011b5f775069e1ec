package session

import (
	"sync"

	"peerlink/internal/core/domain"
)

// candidateSet tracks candidates already applied to the engine so that
// at-least-once relay delivery never applies the same candidate twice.
type candidateSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[string]struct{})}
}

// Add records the candidate and reports whether it was new.
func (s *candidateSet) Add(c domain.Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := c.Key()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}
