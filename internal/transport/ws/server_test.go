package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
	"github.com/Epsilon-byte/ScholarsUnited/internal/gateway"

	"github.com/gorilla/websocket"
)

type stubVerifier struct{}

// tokens look like "user-7"
func (stubVerifier) Verify(token string) (int64, error) {
	if !strings.HasPrefix(token, "user-") {
		return 0, errors.New("bad token")
	}
	switch strings.TrimPrefix(token, "user-") {
	case "1":
		return 1, nil
	case "2":
		return 2, nil
	}
	return 0, errors.New("unknown user")
}

type stubStore struct{}

func (stubStore) CreateMessage(_ context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error) {
	return &domain.ChatMessage{
		ID:        "m-1",
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}

type stubChecker struct{ deny map[int64]bool }

func (c stubChecker) CheckParticipation(_ context.Context, userID int64, _ string) (bool, error) {
	return !c.deny[userID], nil
}

type frame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func startTestServer(t *testing.T, checker gateway.ParticipationChecker) (*httptest.Server, *gateway.Gateway) {
	t.Helper()
	gw := gateway.New(stubStore{}, checker)
	srv := NewServer(gw, stubVerifier{})
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return ts, gw
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	if err := c.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, c *websocket.Conn) frame {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := c.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func authAndJoin(t *testing.T, c *websocket.Conn, token, roomID string) {
	t.Helper()
	send(t, c, map[string]any{"type": TypeAuthenticate, "payload": map[string]string{"token": token}})
	send(t, c, map[string]any{"type": TypeJoinRoom, "payload": map[string]string{"room_id": roomID}})
	if f := readFrame(t, c); f.Type != gateway.TypeRoomState {
		t.Fatalf("expected room_state, got %s (%v)", f.Type, f.Payload)
	}
}

func TestWS_AuthenticateRejectsBadToken(t *testing.T) {
	ts, _ := startTestServer(t, stubChecker{})
	c := dial(t, ts)

	send(t, c, map[string]any{"type": TypeAuthenticate, "payload": map[string]string{"token": "garbage"}})
	f := readFrame(t, c)
	if f.Type != gateway.TypeError || f.Payload["code"] != "invalid_identity" {
		t.Fatalf("expected invalid_identity error, got %s %v", f.Type, f.Payload)
	}

	// the connection survives and can retry with a good token
	authAndJoin(t, c, "user-1", "event-5")
}

func TestWS_JoinDeniedForNonParticipant(t *testing.T) {
	ts, gw := startTestServer(t, stubChecker{deny: map[int64]bool{2: true}})
	c := dial(t, ts)

	send(t, c, map[string]any{"type": TypeAuthenticate, "payload": map[string]string{"token": "user-2"}})
	send(t, c, map[string]any{"type": TypeJoinRoom, "payload": map[string]string{"room_id": "event-5"}})

	f := readFrame(t, c)
	if f.Type != gateway.TypeError || f.Payload["code"] != "unauthorized" {
		t.Fatalf("expected unauthorized error, got %s %v", f.Type, f.Payload)
	}
	if got := gw.UsersInRoom("event-5"); len(got) != 0 {
		t.Fatalf("membership must be unchanged, got %v", got)
	}
}

func TestWS_MessageFlowBetweenTwoClients(t *testing.T) {
	ts, _ := startTestServer(t, stubChecker{})

	alice := dial(t, ts)
	authAndJoin(t, alice, "user-1", "event-5")

	bob := dial(t, ts)
	authAndJoin(t, bob, "user-2", "event-5")

	// alice sees bob arrive; bob did not get his own join event (he got room_state)
	f := readFrame(t, alice)
	if f.Type != gateway.TypeMemberJoined {
		t.Fatalf("expected member_joined, got %s", f.Type)
	}
	if uid, _ := f.Payload["user_id"].(float64); int64(uid) != 2 {
		t.Fatalf("expected user 2 joining, got %v", f.Payload)
	}

	send(t, bob, map[string]any{
		"type":    TypeSendMessage,
		"payload": map[string]string{"room_id": "event-5", "content": "hello"},
	})

	// both members receive the stored message
	for name, c := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		f := readFrame(t, c)
		if f.Type != gateway.TypeMessage {
			t.Fatalf("%s expected message, got %s", name, f.Type)
		}
		if f.Payload["content"] != "hello" || f.Payload["room_id"] != "event-5" {
			t.Fatalf("%s got unexpected payload %v", name, f.Payload)
		}
		if uid, _ := f.Payload["sender_id"].(float64); int64(uid) != 2 {
			t.Fatalf("%s expected sender 2, got %v", name, f.Payload["sender_id"])
		}
	}

	// the sender also gets a receipt with the stored id
	f = readFrame(t, bob)
	if f.Type != gateway.TypeMessageAck || f.Payload["message_id"] != "m-1" {
		t.Fatalf("expected message_ack for m-1, got %s %v", f.Type, f.Payload)
	}
}

func TestWS_SendWithoutJoinFails(t *testing.T) {
	ts, _ := startTestServer(t, stubChecker{})
	c := dial(t, ts)

	send(t, c, map[string]any{"type": TypeAuthenticate, "payload": map[string]string{"token": "user-1"}})
	send(t, c, map[string]any{
		"type":    TypeSendMessage,
		"payload": map[string]string{"room_id": "event-5", "content": "hi"},
	})

	f := readFrame(t, c)
	if f.Type != gateway.TypeError || f.Payload["code"] != "not_joined" {
		t.Fatalf("expected not_joined error, got %s %v", f.Type, f.Payload)
	}
}

func TestWS_DisconnectCleansMembershipAndNotifiesRoom(t *testing.T) {
	ts, gw := startTestServer(t, stubChecker{})

	alice := dial(t, ts)
	authAndJoin(t, alice, "user-1", "g-1")

	bob := dial(t, ts)
	authAndJoin(t, bob, "user-2", "g-1")
	if f := readFrame(t, alice); f.Type != gateway.TypeMemberJoined {
		t.Fatalf("expected member_joined, got %s", f.Type)
	}

	_ = bob.Close()

	// alice hears bob leave once the server notices the closed transport
	f := readFrame(t, alice)
	if f.Type != gateway.TypeMemberLeft {
		t.Fatalf("expected member_left, got %s", f.Type)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !gw.IsUserOnline(2) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if gw.IsUserOnline(2) {
		t.Fatal("user 2 must be offline after disconnect")
	}
	members := gw.UsersInRoom("g-1")
	for _, uid := range members {
		if uid == 2 {
			t.Fatal("user 2 must be out of the room")
		}
	}
}
