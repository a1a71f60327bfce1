package gateway

import (
	"sort"
	"sync"
	"testing"
)

func membersSorted(t *Tracker, roomID string) []int64 {
	out := t.MembersOf(roomID)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestTracker_JoinCreatesRoom(t *testing.T) {
	tr := NewTracker()
	tr.Join("event-5", 1, "c1")

	got := membersSorted(tr, "event-5")
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected member [1], got %v", got)
	}
}

func TestTracker_JoinIsIdempotentPerConn(t *testing.T) {
	tr := NewTracker()
	tr.Join("event-5", 1, "c1")
	tr.Join("event-5", 1, "c1")
	tr.Join("event-5", 1, "c1")

	if got := tr.MembersOf("event-5"); len(got) != 1 {
		t.Fatalf("expected one member, got %v", got)
	}
	if got := tr.RoomsFor("c1"); len(got) != 1 {
		t.Fatalf("expected one room, got %v", got)
	}
}

func TestTracker_LeaveAfterJoinRestoresPreJoinState(t *testing.T) {
	tr := NewTracker()
	tr.Join("g-1", 1, "c1")
	left := tr.Leave("g-1", 1, "c1")

	if !left {
		t.Fatal("user should be fully gone from the room")
	}
	if got := tr.MembersOf("g-1"); len(got) != 0 {
		t.Fatalf("expected empty member set, got %v", got)
	}
	if got := tr.RoomsFor("c1"); len(got) != 0 {
		t.Fatalf("expected no rooms for c1, got %v", got)
	}
}

func TestTracker_UserStaysWhileAnotherConnJoined(t *testing.T) {
	tr := NewTracker()
	tr.Join("event-5", 1, "c1")
	tr.Join("event-5", 1, "c2")

	if left := tr.Leave("event-5", 1, "c1"); left {
		t.Fatal("user still has c2 in the room")
	}
	got := membersSorted(tr, "event-5")
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected member [1], got %v", got)
	}

	if left := tr.Leave("event-5", 1, "c2"); !left {
		t.Fatal("last connection leaving should remove the user")
	}
	if got := tr.MembersOf("event-5"); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestTracker_UnknownRoomIsEmptyNotError(t *testing.T) {
	tr := NewTracker()
	if got := tr.MembersOf("nope"); len(got) != 0 {
		t.Fatalf("expected empty set for unknown room, got %v", got)
	}
	if got := tr.RoomsFor("ghost"); len(got) != 0 {
		t.Fatalf("expected no rooms for unknown conn, got %v", got)
	}
	if tr.Leave("nope", 1, "ghost") {
		t.Fatal("leaving an unknown room must be a no-op")
	}
}

func TestTracker_EmptyRoomIsDiscarded(t *testing.T) {
	tr := NewTracker()
	tr.Join("event-1", 1, "c1")
	tr.Leave("event-1", 1, "c1")

	tr.mu.RLock()
	_, exists := tr.rooms["event-1"]
	tr.mu.RUnlock()
	if exists {
		t.Fatal("empty room must not be retained")
	}

	// and it can come back
	tr.Join("event-1", 2, "c2")
	if got := tr.MembersOf("event-1"); len(got) != 1 {
		t.Fatalf("expected room to be recreated, got %v", got)
	}
}

func TestTracker_RoomsForListsEverySubscription(t *testing.T) {
	tr := NewTracker()
	tr.Join("r1", 1, "c1")
	tr.Join("r2", 1, "c1")
	tr.Join("r3", 2, "c2")

	rooms := tr.RoomsFor("c1")
	sort.Strings(rooms)
	if len(rooms) != 2 || rooms[0] != "r1" || rooms[1] != "r2" {
		t.Fatalf("expected [r1 r2], got %v", rooms)
	}
}

func TestTracker_InRoom(t *testing.T) {
	tr := NewTracker()
	tr.Join("r1", 1, "c1")

	if !tr.InRoom("r1", 1, "c1") {
		t.Fatal("c1 should be in r1")
	}
	if tr.InRoom("r1", 1, "c2") {
		t.Fatal("c2 never joined r1")
	}
	if tr.InRoom("r2", 1, "c1") {
		t.Fatal("r2 does not exist")
	}
}

func TestTracker_ConcurrentJoinLeave(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	rooms := []string{"a", "b", "c"}
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			roomID := rooms[n%len(rooms)]
			uid := int64(n%7 + 1)
			connID := "conn-" + roomID + "-" + string(rune('0'+n%10)) + string(rune('a'+n/10))
			tr.Join(roomID, uid, connID)
			tr.MembersOf(roomID)
			tr.Leave(roomID, uid, connID)
		}(i)
	}
	wg.Wait()

	for _, roomID := range rooms {
		if got := tr.MembersOf(roomID); len(got) != 0 {
			t.Fatalf("room %s should be empty, got %v", roomID, got)
		}
	}
}
