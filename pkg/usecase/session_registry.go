package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/types"
)

// SessionRegistry keeps sessions addressable by ID for stateless transports
type SessionRegistry struct {
	consultation *ConsultationUseCase

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry(consultation *ConsultationUseCase) *SessionRegistry {
	return &SessionRegistry{
		consultation: consultation,
		sessions:     make(map[string]*Session),
	}
}

// Create registers a new idle session and returns its ID
func (r *SessionRegistry) Create() (string, *Session) {
	id := uuid.NewString()
	s := r.consultation.NewSession()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
	return id, s
}

func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, goerr.Wrap(ErrSessionNotFound, "session not found", goerr.V(SessionIDKey, id))
	}
	return s, nil
}

// Delete drops the session. A bound conversation stays open in the store.
func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return goerr.Wrap(ErrSessionNotFound, "session not found", goerr.V(SessionIDKey, id))
	}
	delete(r.sessions, id)
	return nil
}

// Sweep evicts idle sessions that have not been used since idleBefore and
// returns how many were removed. Sessions with a bound conversation are kept.
func (r *SessionRegistry) Sweep(idleBefore time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.State() != types.SessionStateIdle {
			continue
		}
		if s.LastActive().Before(idleBefore) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
