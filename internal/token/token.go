// Package token holds the bearer token for the current shopping session.
// It is the server-side analog of the web client keeping a JWT in session
// storage: the auth flow deposits a token here, and the backend client reads
// it on every request. An empty token is valid and means a guest session.
package token

import "sync"

// Source yields the bearer token to attach to backend requests, or "" for an
// anonymous/guest session.
type Source interface {
	Token() string
}

// Store is a concurrency-safe token holder.
type Store struct {
	mu    sync.RWMutex
	token string
}

// NewStore creates a token store, optionally seeded with an initial token.
func NewStore(initial string) *Store {
	return &Store{token: initial}
}

// Token returns the current bearer token, or "" when the session is anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the session token.
func (s *Store) Set(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
}

// Clear drops the session token, returning the session to guest state.
func (s *Store) Clear() {
	s.Set("")
}
