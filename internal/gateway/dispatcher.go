package gateway

import (
	"log/slog"
	"sync"
)

// Dispatcher fans envelopes out to live connections. Delivery is best-effort
// and fire-and-forget: a connection that cannot take the frame is logged and
// skipped, it never aborts delivery to the rest and never fails the operation
// that triggered the broadcast.
//
// Per-room ordering: broadcasts into the same room are enqueued under that
// room's dispatch lock, so every subscribed connection sees them in invocation
// order. Enqueue only hands the frame to the connection's FIFO send buffer; the
// transport write happens in the connection's writer goroutine, outside any
// lock. No ordering is promised across rooms or against personal notifications.
type roomLock struct {
	mu     sync.Mutex
	closed bool
}

type Dispatcher struct {
	registry *Registry
	tracker  *Tracker

	mu      sync.Mutex
	roomMus map[string]*roomLock
}

func NewDispatcher(registry *Registry, tracker *Tracker) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		tracker:  tracker,
		roomMus:  make(map[string]*roomLock),
	}
}

func (d *Dispatcher) roomMu(roomID string) *roomLock {
	for {
		d.mu.Lock()
		l, ok := d.roomMus[roomID]
		if !ok {
			l = &roomLock{}
			d.roomMus[roomID] = l
		}
		d.mu.Unlock()

		l.mu.Lock()
		if !l.closed {
			return l // returned locked
		}
		// lost a race with the entry being discarded; start over
		l.mu.Unlock()
	}
}

// BroadcastToRoom delivers env once to every live connection of every current
// room member. excludeConnID, if non-empty, skips that one connection (the
// sender renders its own copy locally). A member who leaves mid-broadcast may
// or may not receive this frame; that is accepted, the member set is a
// snapshot taken at dispatch time.
func (d *Dispatcher) BroadcastToRoom(roomID string, env Envelope, excludeConnID string) {
	l := d.roomMu(roomID)

	members := d.tracker.MembersOf(roomID)
	if len(members) == 0 {
		// empty rooms are not retained; retire their dispatch lock too
		l.closed = true
		l.mu.Unlock()

		d.mu.Lock()
		if cur, ok := d.roomMus[roomID]; ok && cur == l {
			delete(d.roomMus, roomID)
		}
		d.mu.Unlock()
		return
	}
	defer l.mu.Unlock()

	for _, uid := range members {
		for _, c := range d.registry.ConnectionsFor(uid) {
			if c.ID() == excludeConnID {
				continue
			}
			if err := c.Enqueue(env); err != nil {
				slog.Warn("broadcast delivery failed",
					"room", roomID, "user", uid, "conn", c.ID(), "type", env.Type, "err", err)
			}
		}
	}
}

// DeliverToUser delivers env to every live connection of one user, independent
// of room membership. Offline users simply receive nothing.
func (d *Dispatcher) DeliverToUser(userID int64, env Envelope) {
	for _, c := range d.registry.ConnectionsFor(userID) {
		if err := c.Enqueue(env); err != nil {
			slog.Warn("user delivery failed",
				"user", userID, "conn", c.ID(), "type", env.Type, "err", err)
		}
	}
}

// BroadcastAll delivers env to every live connection of every user.
func (d *Dispatcher) BroadcastAll(env Envelope) {
	for _, c := range d.registry.Snapshot() {
		if err := c.Enqueue(env); err != nil {
			slog.Warn("broadcast delivery failed", "conn", c.ID(), "type", env.Type, "err", err)
		}
	}
}
