package store

import (
	"context"

	"gorm.io/gorm"

	"collabboard-backend/internal/model"
)

// GormOperationStore Postgres 기반 오퍼레이션 로그
type GormOperationStore struct {
	db *gorm.DB
}

func NewGormOperationStore(db *gorm.DB) *GormOperationStore {
	return &GormOperationStore{db: db}
}

// Append 오퍼레이션 추가
func (s *GormOperationStore) Append(ctx context.Context, op *model.BoardOperation) error {
	return s.db.WithContext(ctx).Create(op).Error
}

// ListSince ID 기준 증분 조회 (append order)
func (s *GormOperationStore) ListSince(ctx context.Context, roomID, page string, sinceID int64) ([]model.BoardOperation, error) {
	var ops []model.BoardOperation
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND page = ? AND id > ?", roomID, page, sinceID).
		Order("id ASC").
		Find(&ops).Error
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// Clear 페이지 로그 전체 삭제
func (s *GormOperationStore) Clear(ctx context.Context, roomID, page string) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND page = ?", roomID, page).
		Delete(&model.BoardOperation{}).Error
}
