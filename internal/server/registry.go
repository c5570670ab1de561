package server

import (
	"sync"

	"github.com/ambelin/attune/internal/engine"
	"github.com/ambelin/attune/internal/store"
)

// ActiveSession pairs a live engine with its session identity.
type ActiveSession struct {
	SessionID string
	ChildID   string
	Engine    *engine.Engine
}

// Registry tracks the engines of sessions currently in flight.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*ActiveSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*ActiveSession)}
}

func (r *Registry) Add(s *ActiveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionID] = s
}

func (r *Registry) Get(sessionID string) (*ActiveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Remove takes a session out of the registry and returns it.
func (r *Registry) Remove(sessionID string) (*ActiveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	return s, ok
}

// Drain removes and returns every active session.
func (r *Registry) Drain() []*ActiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ActiveSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.sessions = make(map[string]*ActiveSession)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// vectorPersister adapts the store's behavior_profiles table to the
// engine's Persister interface.
type vectorPersister struct {
	db *store.DB
}

func (p *vectorPersister) Load(childID string) (*engine.Profile, error) {
	payload, err := p.db.LoadVector(childID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	return engine.ProfileFromJSON(payload)
}

func (p *vectorPersister) Save(childID string, prof *engine.Profile) error {
	payload, err := prof.Snapshot()
	if err != nil {
		return err
	}
	return p.db.SaveVector(childID, payload)
}
