package core

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Registry is the authoritative, synchronized username→session mapping.
// It is the single point of mutual exclusion in the relay: identity
// uniqueness and presence accuracy both rest on it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register claims the slot for the session's username. It fails with
// ErrInvalidIdentity for an empty or whitespace-only name and with
// ErrDuplicateIdentity if the name is already connected; in both cases the
// registry is left untouched.
func (r *Registry) Register(s *Session) error {
	if strings.TrimSpace(s.Username) == "" {
		return ErrInvalidIdentity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.Username]; exists {
		return ErrDuplicateIdentity
	}
	r.sessions[s.Username] = s
	return nil
}

// Unregister removes the mapping if present. Unknown usernames are a no-op.
func (r *Registry) Unregister(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username)
}

// Lookup returns the live session for username, if any.
func (r *Registry) Lookup(username string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[username]
	return s, ok
}

// Snapshot returns the sorted set of currently connected usernames.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	users := lo.Keys(r.sessions)
	r.mu.RUnlock()

	sort.Strings(users)
	return users
}

// Sessions returns the current live sessions.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.sessions)
}
