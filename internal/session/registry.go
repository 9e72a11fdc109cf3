package session

import "sync"

// Registry holds the live sessions of one process. Sessions are never
// persisted and never expire, so only callers that logged in are stored.
type Registry struct {
	ctrl *Controller

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry backed by ctrl
func NewRegistry(ctrl *Controller) *Registry {
	return &Registry{ctrl: ctrl, sessions: make(map[string]*Session)}
}

// Create mints and stores a new locked session
func (r *Registry) Create() *Session {
	s := r.ctrl.NewSession()
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Ephemeral mints a locked session that is not stored
func (r *Registry) Ephemeral() *Session {
	return r.ctrl.NewSession()
}

// Get looks up a session by ID
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for id, or a fresh one when id is unknown
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if existing, err := r.Get(id); err == nil {
			return existing, false
		}
	}
	return r.Create(), true
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
