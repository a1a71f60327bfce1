package gateway

import (
	"context"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

// MessageStore persists chat messages before they are fanned out. Content the
// store rejects is never broadcast.
type MessageStore interface {
	CreateMessage(ctx context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error)
}

// ParticipationChecker decides whether a user may join a room (event
// participant, group member). The gateway never grants on its own.
type ParticipationChecker interface {
	CheckParticipation(ctx context.Context, userID int64, roomID string) (bool, error)
}

// Gateway owns the live-messaging state: who is connected, who is in which
// room, and the dispatcher that fans frames out to them. One instance per
// process, built at startup and handed to the transports; nothing here is a
// package-level singleton, so tests run independent gateways side by side.
type Gateway struct {
	registry   *Registry
	tracker    *Tracker
	dispatcher *Dispatcher

	store   MessageStore
	checker ParticipationChecker

	authzTimeout time.Duration
}

func New(store MessageStore, checker ParticipationChecker) *Gateway {
	reg := NewRegistry()
	tr := NewTracker()

	return &Gateway{
		registry:     reg,
		tracker:      tr,
		dispatcher:   NewDispatcher(reg, tr),
		store:        store,
		checker:      checker,
		authzTimeout: 3 * time.Second,
	}
}

// SetAuthzTimeout bounds the participation check during a join. Elapsing the
// timeout denies the join; it is never an implicit grant.
func (g *Gateway) SetAuthzTimeout(d time.Duration) {
	if d > 0 {
		g.authzTimeout = d
	}
}

// NewSession starts the lifecycle for a freshly accepted connection.
func (g *Gateway) NewSession(conn Conn) *Session {
	return &Session{gw: g, conn: conn, state: StateUnauthenticated}
}

// --- entry points for the rest of the platform ---

// NotifyUser pushes a personal notification to every live connection of one
// user. Offline users receive nothing; the notification store keeps the copy
// they will read later.
func (g *Gateway) NotifyUser(userID int64, payload any) {
	g.dispatcher.DeliverToUser(userID, Envelope{Type: TypeNotification, Payload: payload})
}

// BroadcastNotification pushes a notification to every connected client.
func (g *Gateway) BroadcastNotification(payload any) {
	g.dispatcher.BroadcastAll(Envelope{Type: TypeNotification, Payload: payload})
}

// PublishMessage fans out a message that was created outside a live session
// (e.g. via the REST API). The message must already be persisted.
func (g *Gateway) PublishMessage(msg domain.ChatMessage) {
	g.dispatcher.BroadcastToRoom(msg.RoomID, Envelope{
		Type: TypeMessage,
		Payload: MessagePayload{
			RoomID:    msg.RoomID,
			MessageID: msg.ID,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			TSUnix:    msg.CreatedAt.Unix(),
		},
	}, "")
}

// EmitMessageDeleted tells a room's members that a stored message is gone.
func (g *Gateway) EmitMessageDeleted(roomID, messageID string) {
	g.dispatcher.BroadcastToRoom(roomID, Envelope{
		Type:    TypeMessageDeleted,
		Payload: MessageRefPayload{RoomID: roomID, MessageID: messageID},
	}, "")
}

// EmitMessageUpdated tells a room's members that a stored message was edited.
func (g *Gateway) EmitMessageUpdated(msg domain.ChatMessage) {
	g.dispatcher.BroadcastToRoom(msg.RoomID, Envelope{
		Type: TypeMessageUpdated,
		Payload: MessagePayload{
			RoomID:    msg.RoomID,
			MessageID: msg.ID,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			TSUnix:    msg.CreatedAt.Unix(),
		},
	}, "")
}

func (g *Gateway) IsUserOnline(userID int64) bool {
	return g.registry.IsOnline(userID)
}

// UsersInRoom returns the ids of users currently joined to the room.
func (g *Gateway) UsersInRoom(roomID string) []int64 {
	return g.tracker.MembersOf(roomID)
}
