package presence

import (
	"sync"
)

// Member is the presence snapshot of one connected session, as pushed to
// clients in users-updated payloads.
type Member struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	ConnID   string `json:"socketId"`
}

// Registry tracks which sessions are currently joined to which room. It is
// the only mutable shared state with no durable backing; everything here is
// in-memory and rebuilt from live connections after a restart.
//
// Invariant: a connection id belongs to at most one room at a time.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Member // roomID -> connID -> member
	conns map[string]string            // connID -> roomID
}

// NewRegistry 생성자
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]Member),
		conns: make(map[string]string),
	}
}

// Join adds the member to roomID, atomically evicting it from any previously
// joined room. The previous room id is returned so the caller can emit its
// leave broadcasts ("" if the connection was not in a room).
func (r *Registry) Join(roomID string, m Member) (prevRoom string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[m.ConnID]; ok && prev != "" {
		prevRoom = prev
		if prev == roomID {
			// Re-join of the same room just refreshes the snapshot.
			prevRoom = ""
		}
		r.removeLocked(prev, m.ConnID)
	}

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]Member)
		r.rooms[roomID] = members
	}
	members[m.ConnID] = m
	r.conns[m.ConnID] = roomID

	return prevRoom
}

// Leave removes the connection from roomID. Returns false when the
// connection was not a member (stale leave, already evicted).
func (r *Registry) Leave(roomID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns[connID] != roomID {
		return false
	}
	r.removeLocked(roomID, connID)
	return true
}

// Drop removes the connection from whatever room it is in, returning that
// room id ("" if none). Used on disconnect.
func (r *Registry) Drop(connID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.conns[connID]
	if !ok {
		return ""
	}
	r.removeLocked(roomID, connID)
	return roomID
}

// Room returns the room the connection is currently joined to ("" if none).
func (r *Registry) Room(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.conns[connID]
}

// Members returns a snapshot of the room's presence set.
func (r *Registry) Members(roomID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]Member, 0, len(r.rooms[roomID]))
	for _, m := range r.rooms[roomID] {
		members = append(members, m)
	}
	return members
}

// Count returns the number of sessions in the room.
func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[roomID])
}

// removeLocked deletes the membership entry and the room set once empty.
func (r *Registry) removeLocked(roomID, connID string) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
	delete(r.conns, connID)
}
