package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collabboard-backend/internal/model"
)

// GormRoomStore Postgres 기반 Room 인증 정보 저장소
type GormRoomStore struct {
	db *gorm.DB
}

func NewGormRoomStore(db *gorm.DB) *GormRoomStore {
	return &GormRoomStore{db: db}
}

// GetRoom Room 조회
func (s *GormRoomStore) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Grants 권한 목록 조회
func (s *GormRoomStore) Grants(ctx context.Context, roomID string) ([]int64, []int64, error) {
	var grants []model.RoomGrant
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Find(&grants).Error
	if err != nil {
		return nil, nil, err
	}

	var draw, screenShare []int64
	for _, g := range grants {
		switch g.Capability {
		case model.CapabilityDraw:
			draw = append(draw, g.UserID)
		case model.CapabilityScreenShare:
			screenShare = append(screenShare, g.UserID)
		}
	}
	return draw, screenShare, nil
}

// Grant 권한 부여 (중복 부여는 무시)
func (s *GormRoomStore) Grant(ctx context.Context, roomID string, userID int64, capability string) error {
	grant := model.RoomGrant{
		RoomID:     roomID,
		UserID:     userID,
		Capability: capability,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&grant).Error
}

// Revoke 권한 회수
func (s *GormRoomStore) Revoke(ctx context.Context, roomID string, userID int64, capability string) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ? AND capability = ?", roomID, userID, capability).
		Delete(&model.RoomGrant{}).Error
}

// SetChatMuted 채팅 음소거 플래그 저장
func (s *GormRoomStore) SetChatMuted(ctx context.Context, roomID string, muted bool) error {
	return s.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("room_id = ?", roomID).
		Update("chat_muted", muted).Error
}
