package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
	"github.com/Epsilon-byte/ScholarsUnited/internal/gateway"

	"github.com/gorilla/websocket"
)

// TokenVerifier turns a bearer token from the authenticate frame into a
// verified user id. Satisfied by security.TokenVerifier.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

type Server struct {
	upgrader websocket.Upgrader
	gw       *gateway.Gateway
	verifier TokenVerifier

	pingEvery      time.Duration
	writeTimeout   time.Duration
	sendBuffer     int
	maxMessageSize int64
}

func NewServer(gw *gateway.Gateway, verifier TokenVerifier) *Server {
	return &Server{
		gw:       gw,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:      15 * time.Second,
		writeTimeout:   5 * time.Second,
		sendBuffer:     256,
		maxMessageSize: 1 << 20,
	}
}

func (s *Server) SetTimings(pingEvery, writeTimeout time.Duration) {
	if pingEvery > 0 {
		s.pingEvery = pingEvery
	}
	if writeTimeout > 0 {
		s.writeTimeout = writeTimeout
	}
}

func (s *Server) SetLimits(sendBuffer int, maxMessageSize int64) {
	if sendBuffer > 0 {
		s.sendBuffer = sendBuffer
	}
	if maxMessageSize > 0 {
		s.maxMessageSize = maxMessageSize
	}
}

// WS endpoint: GET /ws. The connection starts unauthenticated; the client
// must send an authenticate frame before joining rooms or sending messages.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newConn(conn, s.sendBuffer, s.writeTimeout, s.pingEvery)
	sess := s.gw.NewSession(c)

	go c.writeLoop()
	s.readLoop(r.Context(), c, sess)

	// transport gone (close, error or idle timeout): full cleanup, exactly once
	sess.Disconnect()
	_ = c.Close()
}

func (s *Server) readLoop(ctx context.Context, c *wsConn, sess *gateway.Session) {
	c.conn.SetReadLimit(s.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("ws read failed", "conn", c.ID(), "err", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		switch frame.Type {
		case TypeAuthenticate:
			s.handleAuthenticate(c, sess, frame.Payload)
		case TypeJoinRoom:
			s.handleJoin(ctx, c, sess, frame.Payload)
		case TypeLeaveRoom:
			var p RoomPayload
			if json.Unmarshal(frame.Payload, &p) == nil {
				if err := sess.LeaveRoom(p.RoomID); err != nil {
					s.sendError(c, err, "leave failed")
				}
			}
		case TypeSendMessage:
			s.handleSend(ctx, c, sess, frame.Payload)
		default:
			// unknown frame types are ignored, forward compatibility
		}
	}
}

func (s *Server) handleAuthenticate(c *wsConn, sess *gateway.Session, raw json.RawMessage) {
	var p AuthenticatePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Token == "" {
		s.sendError(c, domain.ErrInvalidIdentity, "missing token")
		return
	}

	userID, err := s.verifier.Verify(p.Token)
	if err != nil {
		s.sendError(c, domain.ErrInvalidIdentity, "token rejected")
		return
	}
	if err := sess.Authenticate(userID); err != nil {
		s.sendError(c, err, "authenticate failed")
	}
}

func (s *Server) handleJoin(ctx context.Context, c *wsConn, sess *gateway.Session, raw json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.sendError(c, domain.ErrRoomNotFound, "missing room id")
		return
	}

	if err := sess.JoinRoom(ctx, p.RoomID); err != nil {
		s.sendError(c, err, "join failed")
		return
	}

	// membership snapshot so the client can render who is here right now
	_ = c.Enqueue(gateway.Envelope{
		Type: gateway.TypeRoomState,
		Payload: gateway.RoomStatePayload{
			RoomID:  p.RoomID,
			Members: s.gw.UsersInRoom(p.RoomID),
		},
	})
}

func (s *Server) handleSend(ctx context.Context, c *wsConn, sess *gateway.Session, raw json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.sendError(c, domain.ErrNotJoined, "missing room id")
		return
	}

	msg, err := sess.SendMessage(ctx, p.RoomID, p.Content)
	if err != nil {
		s.sendError(c, err, "send failed")
		return
	}

	// lightweight receipt so the sender can clear its pending state
	_ = c.Enqueue(gateway.Envelope{
		Type:    gateway.TypeMessageAck,
		Payload: gateway.MessageAckPayload{MessageID: msg.ID},
	})
}

// sendError reports a failed operation to the originating connection only.
func (s *Server) sendError(c *wsConn, err error, msg string) {
	_ = c.Enqueue(gateway.Envelope{
		Type:    gateway.TypeError,
		Payload: gateway.ErrorPayload{Code: errCode(err), Message: msg},
	})
}

func errCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, domain.ErrAlreadyAuthenticated):
		return "already_authenticated"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotJoined):
		return "not_joined"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, domain.ErrConnectionClosed):
		return "connection_closed"
	default:
		return "internal"
	}
}
