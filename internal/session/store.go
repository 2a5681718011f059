package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Store keeps sessions by id for the command server. Sessions themselves
// are values; Put replaces one atomically and Update runs a
// read-modify-write under the store lock, so concurrent calls on the same
// id never lose an update.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Create stores s under a new random id and returns the id.
func (st *Store) Create(s Session) string {
	id := uuid.NewString()
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return id
}

// Get returns the session stored under id.
func (st *Store) Get(id string) (Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Put replaces the session stored under id. The id must exist.
func (st *Store) Put(id string, s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	st.sessions[id] = s
	return nil
}

// Update replaces the session stored under id with fn's result. fn sees
// the latest stored session and runs with the store locked; if it returns
// an error nothing is stored. Update returns the session now stored.
func (st *Store) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	cur, ok := st.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	st.sessions[id] = next
	return next, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
