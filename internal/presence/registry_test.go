package presence

import (
	"testing"
)

func TestRegistryJoinAndMembers(t *testing.T) {
	r := NewRegistry()

	prev := r.Join("room-a", Member{UserID: 1, Username: "alice", ConnID: "c1"})
	if prev != "" {
		t.Errorf("first join should have no previous room, got %q", prev)
	}
	r.Join("room-a", Member{UserID: 2, Username: "bob", ConnID: "c2"})

	if got := r.Count("room-a"); got != 2 {
		t.Fatalf("expected 2 members, got %d", got)
	}
	if got := r.Room("c1"); got != "room-a" {
		t.Errorf("c1 should be in room-a, got %q", got)
	}
}

func TestRegistryJoinEvictsPreviousRoom(t *testing.T) {
	r := NewRegistry()

	r.Join("room-a", Member{UserID: 1, Username: "alice", ConnID: "c1"})
	prev := r.Join("room-b", Member{UserID: 1, Username: "alice", ConnID: "c1"})

	if prev != "room-a" {
		t.Fatalf("expected eviction from room-a, got %q", prev)
	}
	if r.Count("room-a") != 0 {
		t.Error("room-a should be empty after eviction")
	}
	if got := r.Room("c1"); got != "room-b" {
		t.Errorf("c1 should now be in room-b, got %q", got)
	}
}

func TestRegistrySameRoomRejoin(t *testing.T) {
	r := NewRegistry()

	r.Join("room-a", Member{UserID: 1, Username: "alice", ConnID: "c1"})
	prev := r.Join("room-a", Member{UserID: 1, Username: "alice2", ConnID: "c1"})

	if prev != "" {
		t.Errorf("same-room rejoin should not report an eviction, got %q", prev)
	}
	if r.Count("room-a") != 1 {
		t.Errorf("rejoin should not duplicate membership, count=%d", r.Count("room-a"))
	}

	members := r.Members("room-a")
	if len(members) != 1 || members[0].Username != "alice2" {
		t.Errorf("rejoin should refresh the snapshot, got %+v", members)
	}
}

func TestRegistryLeaveStale(t *testing.T) {
	r := NewRegistry()

	r.Join("room-a", Member{UserID: 1, Username: "alice", ConnID: "c1"})

	if r.Leave("room-b", "c1") {
		t.Error("leave for the wrong room should report false")
	}
	if !r.Leave("room-a", "c1") {
		t.Error("leave for the current room should report true")
	}
	if r.Leave("room-a", "c1") {
		t.Error("repeated leave should report false")
	}
}

func TestRegistryDrop(t *testing.T) {
	r := NewRegistry()

	if got := r.Drop("unknown"); got != "" {
		t.Errorf("dropping an unknown connection should return \"\", got %q", got)
	}

	r.Join("room-a", Member{UserID: 1, Username: "alice", ConnID: "c1"})
	if got := r.Drop("c1"); got != "room-a" {
		t.Errorf("drop should return the room the connection was in, got %q", got)
	}
	if r.Count("room-a") != 0 {
		t.Error("room should be empty after drop")
	}
}
