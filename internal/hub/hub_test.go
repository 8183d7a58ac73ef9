package hub

import (
	"testing"
	"time"

	"collabboard-backend/internal/config"
	"collabboard-backend/internal/model"
	"collabboard-backend/internal/presence"
	"collabboard-backend/internal/session"
)

func newTestHub() (*Hub, *fakeRoomStore) {
	rs := newFakeRoomStore()
	rs.rooms["room-a"] = &model.Room{RoomID: "room-a", Name: "A", HostID: 1}
	rs.rooms["room-b"] = &model.Room{RoomID: "room-b", Name: "B", HostID: 1}

	h := New(presence.NewRegistry(), rs, &fakeOpStore{}, &fakeChatStore{},
		config.BoardConfig{HistoryCap: 100, EventBufferSize: 16, DefaultPage: "main"},
		config.ChatConfig{HistoryWindow: 50, MaxMessageLength: 2000},
	)
	return h, rs
}

func newTestClient(userID int64, username string) (*Client, *fakeConn) {
	conn := &fakeConn{}
	return NewClient(session.New(userID, username), conn), conn
}

// waitFor polls until cond holds; room events are processed on the room's own
// goroutine.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHubJoinUnknownRoom(t *testing.T) {
	h, _ := newTestHub()
	c, conn := newTestClient(1, "alice")

	h.Join(c, "no-such-room")

	errs := conn.byType(MsgError)
	if len(errs) != 1 {
		t.Fatalf("expected one error message, got %d", len(errs))
	}
	p := decode[NoticePayload](t, errs[0])
	if p.Code != "ROOM_NOT_FOUND" {
		t.Errorf("expected ROOM_NOT_FOUND code, got %q", p.Code)
	}
	if h.registry.Room(c.Session.ConnID) != "" {
		t.Error("failed join must not register presence")
	}
}

func TestHubJoinDeliversCatchUp(t *testing.T) {
	h, _ := newTestHub()
	c, conn := newTestClient(1, "alice")

	h.Join(c, "room-a")

	waitFor(t, "catch-up snapshot", func() bool {
		return len(conn.byType(MsgWhiteboardData)) == 1
	})
	if got := h.registry.Room(c.Session.ConnID); got != "room-a" {
		t.Errorf("presence should point at room-a, got %q", got)
	}
	if got := c.Session.Room(); got != "room-a" {
		t.Errorf("session should point at room-a, got %q", got)
	}
}

func TestHubJoinSecondRoomEvictsFirst(t *testing.T) {
	h, _ := newTestHub()
	c, conn := newTestClient(1, "alice")

	h.Join(c, "room-a")
	waitFor(t, "first join", func() bool {
		return len(conn.byType(MsgWhiteboardData)) == 1
	})

	h.Join(c, "room-b")
	waitFor(t, "eviction from room-a", func() bool {
		return h.registry.Count("room-a") == 0
	})
	waitFor(t, "second join", func() bool {
		return len(conn.byType(MsgWhiteboardData)) == 2
	})
	if got := h.registry.Room(c.Session.ConnID); got != "room-b" {
		t.Errorf("presence should point at room-b, got %q", got)
	}
}

func TestHubDisconnectTearsDownEmptyRoom(t *testing.T) {
	h, _ := newTestHub()
	c, conn := newTestClient(1, "alice")

	h.Join(c, "room-a")
	waitFor(t, "join", func() bool {
		return len(conn.byType(MsgWhiteboardData)) == 1
	})

	h.Disconnect(c)
	waitFor(t, "presence cleanup", func() bool {
		return h.registry.Count("room-a") == 0
	})
	waitFor(t, "room actor teardown", func() bool {
		return h.roomFor("room-a") == nil
	})
}

// TestHubDisconnectAfterActorTeardown enacts the narrow interleaving where
// the last member's teardown lands between a joiner's room lookup and its
// presence registration: the registration then points at a dead actor, and
// disconnect has no room loop to clean up through. Presence must not survive
// the connection regardless.
func TestHubDisconnectAfterActorTeardown(t *testing.T) {
	h, _ := newTestHub()
	c, _ := newTestClient(1, "alice")

	room, err := h.getOrCreateRoom("room-a")
	if err != nil {
		t.Fatalf("getOrCreateRoom failed: %v", err)
	}
	h.removeRoom("room-a") // registry is empty, so the actor goes down

	h.registry.Join("room-a", presence.Member{
		UserID: 1, Username: "alice", ConnID: c.Session.ConnID,
	})
	c.Session.SetRoom("room-a")
	room.enqueue(event{kind: evJoin, client: c}) // dead actor, never processed

	h.Disconnect(c)

	if got := h.registry.Count("room-a"); got != 0 {
		t.Fatalf("stale presence entry survives disconnect: count=%d", got)
	}
	if got := h.registry.Room(c.Session.ConnID); got != "" {
		t.Errorf("connection still mapped to %q after disconnect", got)
	}
}

// TestHubJoinAfterActorTeardown covers the same window from the join side:
// when the installed actor disappears under a joiner, the join must land in
// a live replacement rather than a dead channel.
func TestHubJoinAfterActorTeardown(t *testing.T) {
	h, _ := newTestHub()
	c, conn := newTestClient(1, "alice")

	if _, err := h.getOrCreateRoom("room-a"); err != nil {
		t.Fatalf("getOrCreateRoom failed: %v", err)
	}
	h.removeRoom("room-a")

	h.Join(c, "room-a")

	waitFor(t, "catch-up from the replacement actor", func() bool {
		return len(conn.byType(MsgWhiteboardData)) == 1
	})
	if h.roomFor("room-a") == nil {
		t.Error("join should leave a live actor installed")
	}
	if got := h.registry.Room(c.Session.ConnID); got != "room-a" {
		t.Errorf("presence should point at room-a, got %q", got)
	}
}

func TestHubDispatchWithoutRoomIsDropped(t *testing.T) {
	h, _ := newTestHub()
	c, conn := newTestClient(1, "alice")

	h.Dispatch(c, Envelope{Type: MsgSendMessage})

	conn.mu.Lock()
	n := len(conn.sent)
	conn.mu.Unlock()
	if n != 0 {
		t.Errorf("messages from sessions outside a room should be dropped, got %d", n)
	}
}
