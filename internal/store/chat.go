package store

import (
	"context"
	"log"

	"gorm.io/gorm"

	"collabboard-backend/internal/cache"
	"collabboard-backend/internal/model"
)

// GormChatStore persists chat to Postgres and mirrors the recent window into
// Redis. Reads prefer the cache; a miss (or no cache configured) falls back
// to the database.
type GormChatStore struct {
	db    *gorm.DB
	cache *cache.RedisClient // nil when Redis is unavailable
}

func NewGormChatStore(db *gorm.DB, cache *cache.RedisClient) *GormChatStore {
	return &GormChatStore{db: db, cache: cache}
}

// Append 메시지 저장
func (s *GormChatStore) Append(ctx context.Context, msg *model.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.AddMessage(ctx, msg.RoomID, msg); err != nil {
			// Cache is an accelerator only; history still serves from the DB.
			log.Printf("[ChatStore] cache write failed for room %s: %v", msg.RoomID, err)
		}
	}
	return nil
}

// Recent 최근 메시지 조회 (시간순)
func (s *GormChatStore) Recent(ctx context.Context, roomID string, limit int) ([]model.ChatMessage, error) {
	if s.cache != nil {
		if cached, err := s.cache.RecentMessages(ctx, roomID, int64(limit)); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	// Most-recent-first from the DB, then reversed to chronological order.
	var messages []model.ChatMessage
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
