package gateway

import (
	"sync"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

// Conn is one live bidirectional session with a client. Implementations must
// make Enqueue safe for concurrent use and non-blocking; the payload is written
// to the transport by the connection's own writer.
type Conn interface {
	ID() string
	Enqueue(env Envelope) error
	Close() error
}

type userEntry struct {
	mu     sync.Mutex
	closed bool
	conns  map[string]Conn // connID -> conn
}

// Registry maps a user to the set of their live connections. A user may hold
// several at once (tabs, devices); no live connection is a normal state, not an
// error. The outer mutex guards only the user map; each user's connection set
// has its own lock so unrelated users never contend.
type Registry struct {
	mu    sync.RWMutex
	users map[int64]*userEntry
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[int64]*userEntry)}
}

func (r *Registry) entry(userID int64) *userEntry {
	for {
		r.mu.Lock()
		e, ok := r.users[userID]
		if !ok {
			e = &userEntry{conns: make(map[string]Conn)}
			r.users[userID] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if !e.closed {
			return e // returned locked
		}
		// lost a race with the entry being discarded; start over
		e.mu.Unlock()
	}
}

// Register binds conn to userID. Registering the same connection again under
// the same user is a no-op; a different user is a protocol violation.
func (r *Registry) Register(userID int64, conn Conn) error {
	if userID <= 0 {
		return domain.ErrInvalidIdentity
	}
	e := r.entry(userID)
	defer e.mu.Unlock()
	e.conns[conn.ID()] = conn

	return nil
}

// ConnectionsFor returns a snapshot of the user's live connections.
func (r *Registry) ConnectionsFor(userID int64) []Conn {
	r.mu.RLock()
	e, ok := r.users[userID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Conn, 0, len(e.conns))
	for _, c := range e.conns {
		out = append(out, c)
	}

	return out
}

// Remove drops one connection of the user. Unknown connections and unknown
// users are no-ops; disconnect cleanup must never fail.
func (r *Registry) Remove(userID int64, connID string) {
	r.mu.Lock()
	e, ok := r.users[userID]
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	delete(e.conns, connID)
	if len(e.conns) == 0 {
		e.closed = true
		e.mu.Unlock()

		r.mu.Lock()
		if cur, ok := r.users[userID]; ok && cur == e {
			delete(r.users, userID)
		}
		r.mu.Unlock()
		return
	}
	e.mu.Unlock()
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]

	return ok
}

// Snapshot returns every live connection across all users, for platform-wide
// notification broadcast.
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	entries := make([]*userEntry, 0, len(r.users))
	for _, e := range r.users {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var out []Conn
	for _, e := range entries {
		e.mu.Lock()
		for _, c := range e.conns {
			out = append(out, c)
		}
		e.mu.Unlock()
	}

	return out
}
