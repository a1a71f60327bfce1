package gateway

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

// fakeConn records every enqueued envelope; failing conns reject delivery the
// way a dead transport would.
type fakeConn struct {
	id      string
	failing bool

	mu  sync.Mutex
	got []Envelope
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Enqueue(env Envelope) error {
	if c.failing {
		return errors.New("transport gone")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, env)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) received() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.got))
	copy(out, c.got)
	return out
}

func (c *fakeConn) countOf(frameType string) int {
	n := 0
	for _, env := range c.received() {
		if env.Type == frameType {
			n++
		}
	}
	return n
}

// fakeStore hands back a stored message or fails on demand.
type fakeStore struct {
	fail bool
	seq  int
}

func (s *fakeStore) CreateMessage(_ context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error) {
	if s.fail {
		return nil, errors.New("db down")
	}
	s.seq++
	return &domain.ChatMessage{
		ID:        "m-" + strconv.Itoa(s.seq),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}

// fakeChecker grants or denies; block makes it hang until the context dies,
// to exercise the authorization timeout.
type fakeChecker struct {
	allow map[int64]bool
	err   error
	block bool
}

func (f *fakeChecker) CheckParticipation(ctx context.Context, userID int64, roomID string) (bool, error) {
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	if f.err != nil {
		return false, f.err
	}
	return f.allow[userID], nil
}

func newTestGateway() (*Gateway, *fakeStore, *fakeChecker) {
	store := &fakeStore{}
	checker := &fakeChecker{allow: map[int64]bool{}}
	return New(store, checker), store, checker
}
