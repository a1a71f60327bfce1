package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/internal/gateway"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errSendBufferFull = errors.New("send buffer full")

// wsConn adapts a gorilla connection to gateway.Conn. Frames are queued on a
// buffered FIFO channel and written by the connection's own writer goroutine,
// so a slow client never blocks a broadcast; a client that cannot keep up
// loses frames instead (logged by the dispatcher).
type wsConn struct {
	id   string
	conn *websocket.Conn

	send      chan gateway.Envelope
	closed    chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
	pingEvery    time.Duration
}

func newConn(c *websocket.Conn, buffer int, writeTimeout, pingEvery time.Duration) *wsConn {
	return &wsConn{
		id:           uuid.NewString(),
		conn:         c,
		send:         make(chan gateway.Envelope, buffer),
		closed:       make(chan struct{}),
		writeTimeout: writeTimeout,
		pingEvery:    pingEvery,
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Enqueue(env gateway.Envelope) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.send <- env:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// writeLoop drains the send queue in FIFO order and keeps the connection alive
// with pings. Any write error tears the connection down; the read loop then
// unwinds and runs disconnect cleanup.
func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}
