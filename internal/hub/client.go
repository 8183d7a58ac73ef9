package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"collabboard-backend/internal/session"
)

// Conn is the transport surface the hub writes to. *websocket.Conn satisfies
// it; tests substitute a recording implementation.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client binds an authenticated session to its connection. Writes are
// serialized with a per-connection mutex since room loops and the hub may
// both push to the same socket.
type Client struct {
	Session *session.Session

	conn    Conn
	writeMu sync.Mutex
}

// NewClient 클라이언트 생성
func NewClient(sess *session.Session, conn Conn) *Client {
	return &Client{
		Session: sess,
		conn:    conn,
	}
}

// Send marshals and writes one server→client message. Write failures are
// logged only; the read loop notices the dead connection and cleans up.
func (c *Client) Send(msgType string, payload any) {
	data, err := json.Marshal(WSMessage{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("[Client %s] failed to marshal %s: %v", c.Session.ConnID, msgType, err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[Client %s] failed to send %s: %v", c.Session.ConnID, msgType, err)
	}
}
