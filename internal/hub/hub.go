package hub

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"collabboard-backend/internal/config"
	"collabboard-backend/internal/presence"
	"collabboard-backend/internal/store"
)

// Hub manages all active rooms and routes inbound session events to the
// owning room's event loop. One goroutine per room consumes events in
// arrival order, which is the authoritative order for broadcasts and
// persistence: one writer per room, no locks on room state.
type Hub struct {
	rooms     map[string]*Room
	registry  *presence.Registry
	roomStore store.RoomStore
	ops       store.OperationStore
	chat      store.ChatStore
	boardCfg  config.BoardConfig
	chatCfg   config.ChatConfig

	mu sync.Mutex // guards rooms; held across store I/O on room creation
}

// New 새 Hub 생성
func New(registry *presence.Registry, roomStore store.RoomStore, ops store.OperationStore, chat store.ChatStore, boardCfg config.BoardConfig, chatCfg config.ChatConfig) *Hub {
	h := &Hub{
		rooms:     make(map[string]*Room),
		registry:  registry,
		roomStore: roomStore,
		ops:       ops,
		chat:      chat,
		boardCfg:  boardCfg,
		chatCfg:   chatCfg,
	}
	return h
}

// Join moves the client into roomID, evicting it from any previous room
// first. A room the authorization provider cannot resolve is reported to the
// joining session only; the connection stays open.
func (h *Hub) Join(c *Client, roomID string) {
	member := presence.Member{
		UserID:   c.Session.UserID,
		Username: c.Session.Username,
		ConnID:   c.Session.ConnID,
	}

	for {
		room, err := h.getOrCreateRoom(roomID)
		if err != nil {
			if errors.Is(err, store.ErrRoomNotFound) {
				c.Send(MsgError, NoticePayload{Message: "Failed to join room", Code: "ROOM_NOT_FOUND"})
			} else {
				log.Printf("[Hub] join %s failed: %v", roomID, err)
				c.Send(MsgError, NoticePayload{Message: "Failed to join room"})
			}
			return
		}

		prev := h.registry.Join(roomID, member)
		if prev != "" {
			if prevRoom := h.roomFor(prev); prevRoom != nil {
				prevRoom.enqueue(event{kind: evLeave, client: c})
			}
		}

		// The actor may have been torn down between the lookup and the
		// presence registration (last member left, removeRoom saw an empty
		// registry). Registration blocks any further teardown, so if the
		// actor we hold is still the installed one the join is safe;
		// otherwise retry against a fresh actor.
		if h.roomFor(roomID) != room {
			continue
		}

		c.Session.SetRoom(roomID)
		room.enqueue(event{kind: evJoin, client: c})
		return
	}
}

// Leave handles an explicit leave-room request.
func (h *Hub) Leave(c *Client) {
	roomID := h.registry.Room(c.Session.ConnID)
	if roomID == "" {
		return
	}
	c.Session.SetRoom("")
	if room := h.roomFor(roomID); room != nil {
		room.enqueue(event{kind: evLeave, client: c})
		return
	}
	h.registry.Leave(roomID, c.Session.ConnID)
}

// Dispatch routes any non-join message into the client's current room.
// Messages from sessions that are not in a room are dropped.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	roomID := h.registry.Room(c.Session.ConnID)
	if roomID == "" {
		return
	}
	if room := h.roomFor(roomID); room != nil {
		room.enqueue(event{kind: evMessage, client: c, env: env})
	}
}

// Disconnect performs full cleanup for a closed connection: presence
// removal, call teardown and the leave broadcasts happen in one room event
// so no partial state survives. When the actor is already gone the presence
// entry still must not outlive the connection.
func (h *Hub) Disconnect(c *Client) {
	roomID := h.registry.Room(c.Session.ConnID)
	c.Session.SetRoom("")
	if roomID == "" {
		return
	}
	if room := h.roomFor(roomID); room != nil {
		room.enqueue(event{kind: evDisconnect, client: c})
		return
	}
	h.registry.Drop(c.Session.ConnID)
}

// NotifyRoomDeleted pushes a forced-leave notice to every session in the
// room. Triggered by the external CRUD layer.
func (h *Hub) NotifyRoomDeleted(roomID string) {
	if room := h.roomFor(roomID); room != nil {
		room.enqueue(event{kind: evRoomDeleted})
	}
}

// KickUser force-leaves every session of userID in the room. Triggered by
// the external CRUD layer.
func (h *Hub) KickUser(roomID string, userID int64) {
	if room := h.roomFor(roomID); room != nil {
		room.enqueue(event{kind: evKick, userID: userID})
	}
}

// roomFor returns the active room actor, nil when the room has no sessions.
func (h *Hub) roomFor(roomID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms[roomID]
}

// getOrCreateRoom starts a room actor on first join, loading its
// authorization state and durable operation log.
func (h *Hub) getOrCreateRoom(roomID string) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		return room, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record, err := h.roomStore.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	draw, share, err := h.roomStore.Grants(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room := newRoom(h, record, draw, share)
	if err := room.loadPage(ctx, room.currentPage); err != nil {
		// Catch-up degrades to the in-memory log; connected clients are the
		// source of truth during a storage outage.
		log.Printf("[Hub] room %s: operation log load failed: %v", roomID, err)
	}

	h.rooms[roomID] = room
	go room.run()
	log.Printf("[Hub] Created room: %s", roomID)

	return room, nil
}

// removeRoom tears the actor down once its presence set is empty.
func (h *Hub) removeRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}
	if h.registry.Count(roomID) > 0 {
		// Someone joined between the empty check and now.
		return
	}

	room.shutdown()
	delete(h.rooms, roomID)
	log.Printf("[Hub] Removed room: %s", roomID)
}
