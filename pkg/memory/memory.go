// Package memory keeps the per-session conversation history consulted by
// ask-mode requests. Sequences are unbounded; no eviction policy is defined.
package memory

import (
	"sync"
	"time"

	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

// DefaultSession is used when a request carries no session header, which
// collapses all anonymous callers onto one shared history.
const DefaultSession = "default"

// Store is a mutex-guarded conversation log keyed by session id. Guarding
// makes concurrent appends safe, but two requests in flight for the same
// session still each see the pre-update history: the later read misses the
// earlier turn, which is acceptable for a best-effort assistant log.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]models.ConversationTurn
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]models.ConversationTurn)}
}

// History returns a copy of the session's turns in append order.
func (s *Store) History(sessionID string) []models.ConversationTurn {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]models.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Append records one query/answer exchange at the end of a request.
func (s *Store) Append(sessionID, query, answer string) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], models.ConversationTurn{
		Query:     query,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	})
}

// Sessions reports how many distinct sessions have history.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
