package model

import (
	"time"
)

// BoardOperation 보드 연산 데이터
// One persisted drawing action (stroke, shape or text placement). OpData is
// the JSON payload exactly as broadcast, so replay needs no transformation.
type BoardOperation struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"type:varchar(100);not null;index:idx_board_room_page" json:"room_id"`
	Page      string    `gorm:"type:varchar(100);not null;default:'main';index:idx_board_room_page" json:"page"`
	UserID    int64     `gorm:"not null" json:"user_id"`
	Username  string    `gorm:"type:varchar(100);not null" json:"username"`
	OpData    string    `gorm:"type:jsonb;not null" json:"op_data"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BoardOperation) TableName() string {
	return "board_operations"
}
