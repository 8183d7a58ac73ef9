package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session 클라이언트 세션 (Thread-Safe)
// Created when a connection authenticates, destroyed on disconnect. Never
// persisted; the connection id is the identity every relay target is keyed by.
type Session struct {
	ConnID      string
	UserID      int64
	Username    string
	ConnectedAt time.Time

	// 동시성 제어
	mu          sync.RWMutex
	currentRoom string
}

// New 새 세션 생성
func New(userID int64, username string) *Session {
	return &Session{
		ConnID:      uuid.New().String(),
		UserID:      userID,
		Username:    username,
		ConnectedAt: time.Now(),
	}
}

// SetRoom 현재 방 설정 (빈 문자열이면 방 없음)
func (s *Session) SetRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentRoom = roomID
}

// Room 현재 방 조회
func (s *Session) Room() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.currentRoom
}

// Duration 연결 유지 시간
func (s *Session) Duration() time.Duration {
	return time.Since(s.ConnectedAt)
}
