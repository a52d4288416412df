package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

type scopeKey struct{}

// Scope ties a database session to one inbound request. The session is
// started on first use and ended by Release.
type Scope struct {
	mu       sync.Mutex
	session  mongo.Session
	released bool
}

// WithScope returns a context carrying a fresh Scope.
func WithScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// ScopeFrom returns the Scope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Active reports whether a session was started and not yet released.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Released reports whether Release was called.
func (s *Scope) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *Scope) acquire(client *mongo.Client) (mongo.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, mongo.ErrClientDisconnected
	}
	if s.session != nil {
		return s.session, nil
	}
	sess, err := client.StartSession()
	if err != nil {
		return nil, err
	}
	s.session = sess
	return sess, nil
}

// Release ends the session if one was started. Safe to call more than once.
func (s *Scope) Release(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.released = true
	if s.session != nil {
		s.session.EndSession(ctx)
		s.session = nil
	}
}
