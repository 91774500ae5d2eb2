// Package session persists item display modes between layout passes.
//
// A [Session] holds a [mode.Snapshot] under a random id. Sessions live in a
// [Store]; [CacheStore] keeps them in any [cache.Cache], so the same code
// persists modes to disk for the CLI and to redis for a fleet of servers.
//
// # Usage
//
//	store := session.NewCacheStore(c, cache.NewDefaultKeyer(), session.DefaultTTL)
//	mgr := session.NewManager(store, mode.Options{})
//
//	sess, err := mgr.Create(ctx)
//	...
//	_, err = mgr.Update(ctx, sess.ID, func(m *mode.Machine) error {
//	    _, err := m.Apply("chr1:100", 3, mode.Expand)
//	    return err
//	})
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tracklayout/pkg/core/mode"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 7 * 24 * time.Hour

// Session stores the mode state of one viewer.
type Session struct {
	ID        string        `json:"id"`
	Modes     mode.Snapshot `json:"modes"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ExpiresAt time.Time     `json:"expires_at,omitzero"`
}

// IsExpired returns true if the session has expired. Sessions without an
// expiry never expire.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Machine returns a machine restored from the session's modes.
func (s *Session) Machine(opts mode.Options) *mode.Machine {
	m := mode.New(opts)
	m.Restore(s.Modes)
	return m
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error
}

// New creates an empty session with a random id. A zero ttl never expires.
func New(ttl time.Duration) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return newWithID(id.String(), ttl), nil
}

func newWithID(id string, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Modes:     mode.Snapshot{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}
