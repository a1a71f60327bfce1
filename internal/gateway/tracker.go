package gateway

import "sync"

type room struct {
	mu      sync.Mutex
	closed  bool
	members map[int64]map[string]struct{} // userID -> set of connIDs
}

// Tracker records which connections of which users are subscribed to a room.
// Rooms exist only while someone is in them: the first Join creates the room,
// removing the last member discards it. The outer mutex guards the room map;
// each room carries its own lock so joins in unrelated rooms don't serialize.
//
// Authorization is the caller's job; by the time Join is called the user must
// already have passed the participation check.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[string]*room
	conns map[string]map[string]struct{} // connID -> set of roomIDs, for disconnect cleanup
}

func NewTracker() *Tracker {
	return &Tracker{
		rooms: make(map[string]*room),
		conns: make(map[string]map[string]struct{}),
	}
}

func (t *Tracker) room(roomID string) *room {
	for {
		t.mu.Lock()
		rm, ok := t.rooms[roomID]
		if !ok {
			rm = &room{members: make(map[int64]map[string]struct{})}
			t.rooms[roomID] = rm
		}
		t.mu.Unlock()

		rm.mu.Lock()
		if !rm.closed {
			return rm // returned locked
		}
		rm.mu.Unlock()
	}
}

// Join subscribes the connection to the room. Idempotent per (room, conn).
func (t *Tracker) Join(roomID string, userID int64, connID string) {
	rm := t.room(roomID)
	set, ok := rm.members[userID]
	if !ok {
		set = make(map[string]struct{})
		rm.members[userID] = set
	}
	set[connID] = struct{}{}
	rm.mu.Unlock()

	t.mu.Lock()
	rs, ok := t.conns[connID]
	if !ok {
		rs = make(map[string]struct{})
		t.conns[connID] = rs
	}
	rs[roomID] = struct{}{}
	t.mu.Unlock()
}

// Leave drops the connection's subscription and reports whether the user is
// now gone from the room entirely (their last connection there left). The user
// stays a member while any of their other connections remains joined; the room
// itself is discarded once its member set is empty. Unknown rooms and
// non-members are no-ops.
func (t *Tracker) Leave(roomID string, userID int64, connID string) (userLeft bool) {
	t.mu.Lock()
	if rs, ok := t.conns[connID]; ok {
		delete(rs, roomID)
		if len(rs) == 0 {
			delete(t.conns, connID)
		}
	}
	rm, ok := t.rooms[roomID]
	t.mu.Unlock()
	if !ok {
		return false
	}

	rm.mu.Lock()
	if set, ok := rm.members[userID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(rm.members, userID)
			userLeft = true
		}
	}
	if len(rm.members) == 0 {
		rm.closed = true
		rm.mu.Unlock()

		t.mu.Lock()
		if cur, ok := t.rooms[roomID]; ok && cur == rm {
			delete(t.rooms, roomID)
		}
		t.mu.Unlock()
		return userLeft
	}
	rm.mu.Unlock()

	return userLeft
}

// MembersOf returns the users currently in the room; empty for unknown rooms.
func (t *Tracker) MembersOf(roomID string) []int64 {
	t.mu.RLock()
	rm, ok := t.rooms[roomID]
	t.mu.RUnlock()
	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]int64, 0, len(rm.members))
	for uid := range rm.members {
		out = append(out, uid)
	}

	return out
}

// RoomsFor returns every room the connection is subscribed to, so disconnect
// cleanup does not depend on the caller remembering its joins.
func (t *Tracker) RoomsFor(connID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rs, ok := t.conns[connID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rs))
	for roomID := range rs {
		out = append(out, roomID)
	}

	return out
}

// InRoom reports whether the given connection is subscribed to the room.
func (t *Tracker) InRoom(roomID string, userID int64, connID string) bool {
	t.mu.RLock()
	rm, ok := t.rooms[roomID]
	t.mu.RUnlock()
	if !ok {
		return false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	set, ok := rm.members[userID]
	if !ok {
		return false
	}
	_, ok = set[connID]

	return ok
}
