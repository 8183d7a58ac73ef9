package handler

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"

	"collabboard-backend/internal/hub"
	"collabboard-backend/internal/session"
)

// BoardWSHandler WebSocket 보드 핸들러
// One goroutine per connection reads messages and routes them into the hub.
// All room logic lives in the room event loops; this layer only frames,
// decodes and cleans up.
type BoardWSHandler struct {
	hub *hub.Hub
}

// NewBoardWSHandler BoardWSHandler 생성
func NewBoardWSHandler(h *hub.Hub) *BoardWSHandler {
	return &BoardWSHandler{hub: h}
}

// HandleWebSocket WebSocket 연결 처리
// The upgrade route already validated the JWT and stored the identity in
// Locals; a connection without it is closed immediately.
func (h *BoardWSHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok1 := c.Locals("userId").(int64)
	username, ok2 := c.Locals("username").(string)
	if !ok1 || !ok2 {
		c.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"invalid session"}}`))
		c.Close()
		return
	}

	sess := session.New(userID, username)
	client := hub.NewClient(sess, c)

	log.Printf("[BoardWS] Connected: user=%d (%s), conn=%s", userID, username, sess.ConnID)

	// 연결 해제 시 정리
	defer func() {
		h.hub.Disconnect(client)
		c.Close()
		log.Printf("[BoardWS] Disconnected: user=%d, conn=%s, duration=%s",
			userID, sess.ConnID, sess.Duration().Round(time.Second))
	}()

	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[BoardWS] Read error: user=%d: %v", userID, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var env hub.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("[BoardWS] Malformed message from user=%d: %v", userID, err)
			continue
		}

		switch env.Type {
		case hub.MsgJoinRoom:
			var p hub.JoinRoomPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil || p.RoomID == "" {
				continue
			}
			h.hub.Join(client, p.RoomID)
		case hub.MsgLeaveRoom:
			h.hub.Leave(client)
		default:
			h.hub.Dispatch(client, env)
		}
	}
}
