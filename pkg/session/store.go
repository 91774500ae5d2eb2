package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/tracklayout/pkg/cache"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
)

// CacheStore keeps sessions in a cache.Cache.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCacheStore creates a store. Every Set refreshes the entry's ttl.
func NewCacheStore(c cache.Cache, k cache.Keyer, ttl time.Duration) *CacheStore {
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keyer: k, ttl: ttl}
}

func (s *CacheStore) Get(ctx context.Context, id string) (*Session, error) {
	data, hit, err := s.cache.Get(ctx, s.keyer.SessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !hit {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		_ = s.cache.Delete(ctx, s.keyer.SessionKey(id))
		return nil, nil
	}
	if sess.Modes == nil {
		sess.Modes = mode.Snapshot{}
	}
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()
	if s.ttl > 0 {
		sess.ExpiresAt = sess.UpdatedAt.Add(s.ttl)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.cache.Set(ctx, s.keyer.SessionKey(sess.ID), data, s.ttl); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, s.keyer.SessionKey(id)); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

var _ Store = (*CacheStore)(nil)

// =============================================================================
// Manager
// =============================================================================

// Manager serialises updates to a session within one process. Updates from
// different processes sharing a backend are last-writer-wins.
type Manager struct {
	store Store
	opts  mode.Options
	ttl   time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager whose machines use opts.
func NewManager(store Store, opts mode.Options) *Manager {
	return &Manager{store: store, opts: opts, ttl: DefaultTTL, locks: make(map[string]*sync.Mutex)}
}

// Create stores and returns a new empty session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	sess, err := New(m.ttl)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session or ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Machine returns a machine restored from session id.
func (m *Manager) Machine(ctx context.Context, id string) (*mode.Machine, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Machine(m.opts), nil
}

// Update loads session id, runs fn on its machine and stores the result.
// Nothing is stored when fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*mode.Machine) error) (*Session, error) {
	lock := m.lock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	machine := sess.Machine(m.opts)
	if err := fn(machine); err != nil {
		return nil, err
	}
	sess.Modes = machine.Snapshot()
	if err := m.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes session id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	return m.store.Delete(ctx, id)
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// =============================================================================
// CLI convenience wrapper
// =============================================================================

const defaultCLISessionID = "cli"

// CLIStore keeps the single session the CLI uses between runs.
type CLIStore struct {
	store Store
	id    string
}

// NewCLIStore creates a CLI store on top of store.
func NewCLIStore(store Store) *CLIStore {
	return &CLIStore{store: store, id: defaultCLISessionID}
}

// Load returns the CLI session, creating an empty one on first use.
func (c *CLIStore) Load(ctx context.Context) (*Session, error) {
	sess, err := c.store.Get(ctx, c.id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = newWithID(c.id, 0)
	}
	return sess, nil
}

// Save stores the CLI session.
func (c *CLIStore) Save(ctx context.Context, sess *Session) error {
	sess.ID = c.id
	return c.store.Set(ctx, sess)
}

// Reset deletes the CLI session.
func (c *CLIStore) Reset(ctx context.Context) error {
	return c.store.Delete(ctx, c.id)
}
