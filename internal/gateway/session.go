package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session is the per-connection lifecycle:
//
//	unauthenticated -> authenticated -> joined (zero or more rooms) -> closed
//
// One session is driven by its connection's reader goroutine, so transitions
// arrive sequentially; the mutex only protects against Disconnect racing a
// late transition when the transport dies underneath a running handler.
type Session struct {
	gw   *Gateway
	conn Conn

	mu     sync.Mutex
	state  State
	userID int64
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Authenticate binds the verified identity to the connection and registers it.
// Repeating the same identity is a no-op; claiming a different one is protocol
// misuse and leaves the binding untouched. On a malformed identity the
// connection stays unauthenticated and may retry.
func (s *Session) Authenticate(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateClosed:
		return domain.ErrConnectionClosed
	case s.state != StateUnauthenticated:
		if s.userID == userID {
			return nil
		}
		return domain.ErrAlreadyAuthenticated
	case userID <= 0:
		return domain.ErrInvalidIdentity
	}

	if err := s.gw.registry.Register(userID, s.conn); err != nil {
		return err
	}
	s.userID = userID
	s.state = StateAuthenticated
	slog.Debug("session authenticated", "user", userID, "conn", s.conn.ID())

	return nil
}

// JoinRoom validates the user against the participation collaborator, records
// the membership and announces the join to the rest of the room. Check
// timeouts deny the join. Idempotent per room.
func (s *Session) JoinRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return domain.ErrConnectionClosed
	}
	if s.state == StateUnauthenticated {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	userID := s.userID
	s.mu.Unlock()

	if roomID == "" {
		return domain.ErrRoomNotFound
	}
	if s.gw.tracker.InRoom(roomID, userID, s.conn.ID()) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.gw.authzTimeout)
	defer cancel()
	ok, err := s.gw.checker.CheckParticipation(ctx, userID, roomID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("participation check timed out", "user", userID, "room", roomID)
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}

	s.gw.tracker.Join(roomID, userID, s.conn.ID())
	s.mu.Lock()
	if s.state == StateAuthenticated {
		s.state = StateJoined
	}
	s.mu.Unlock()

	s.gw.dispatcher.BroadcastToRoom(roomID, Envelope{
		Type:    TypeMemberJoined,
		Payload: MemberEventPayload{RoomID: roomID, UserID: userID},
	}, s.conn.ID())
	slog.Debug("session joined room", "user", userID, "room", roomID, "conn", s.conn.ID())

	return nil
}

// LeaveRoom withdraws this connection from the room. If that removed the user
// from the room entirely, remaining members are told; if no rooms remain for
// this connection the session drops back to the authenticated state.
func (s *Session) LeaveRoom(roomID string) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return domain.ErrConnectionClosed
	}
	if s.state == StateUnauthenticated {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	userID := s.userID
	s.mu.Unlock()

	userLeft := s.gw.tracker.Leave(roomID, userID, s.conn.ID())
	if userLeft {
		s.gw.dispatcher.BroadcastToRoom(roomID, Envelope{
			Type:    TypeMemberLeft,
			Payload: MemberEventPayload{RoomID: roomID, UserID: userID},
		}, s.conn.ID())
	}

	s.mu.Lock()
	if s.state == StateJoined && len(s.gw.tracker.RoomsFor(s.conn.ID())) == 0 {
		s.state = StateAuthenticated
	}
	s.mu.Unlock()

	return nil
}

// SendMessage persists the message through the storage collaborator and, only
// on success, fans it out to the room (sender included, so every client renders
// the stored copy). Storage failure is the sender's problem alone.
func (s *Session) SendMessage(ctx context.Context, roomID, content string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil, domain.ErrConnectionClosed
	}
	userID := s.userID
	s.mu.Unlock()

	if !s.gw.tracker.InRoom(roomID, userID, s.conn.ID()) {
		return nil, domain.ErrNotJoined
	}

	msg, err := s.gw.store.CreateMessage(ctx, roomID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.gw.dispatcher.BroadcastToRoom(roomID, Envelope{
		Type: TypeMessage,
		Payload: MessagePayload{
			RoomID:    msg.RoomID,
			MessageID: msg.ID,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			TSUnix:    msg.CreatedAt.Unix(),
		},
	}, "")

	return msg, nil
}

// Disconnect runs the terminal cleanup: leave every room this connection is
// still in (announcing each departure), then drop the connection from the
// registry. Triggered by transport closure, idempotent, and always runs to
// completion; a half-cleaned connection would leak membership state forever.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	prev := s.state
	userID := s.userID
	s.state = StateClosed
	s.mu.Unlock()

	if prev == StateUnauthenticated {
		return
	}

	for _, roomID := range s.gw.tracker.RoomsFor(s.conn.ID()) {
		if s.gw.tracker.Leave(roomID, userID, s.conn.ID()) {
			s.gw.dispatcher.BroadcastToRoom(roomID, Envelope{
				Type:    TypeMemberLeft,
				Payload: MemberEventPayload{RoomID: roomID, UserID: userID},
			}, s.conn.ID())
		}
	}
	s.gw.registry.Remove(userID, s.conn.ID())
	slog.Debug("session closed", "user", userID, "conn", s.conn.ID())
}
