package model

import (
	"time"
)

// Capability names stored in room_grants.
const (
	CapabilityDraw        = "draw"
	CapabilityScreenShare = "screen-share"
)

// Chat message types.
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Room is the authorization record for a collaboration room. Creation and
// deletion happen in the external CRUD layer; the engine only reads the host
// and mutates the grant/mute state.
type Room struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"room_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	HostID    int64     `gorm:"not null" json:"host_id"`
	ChatMuted bool      `gorm:"default:false" json:"chat_muted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Grants []RoomGrant `gorm:"foreignKey:RoomID;references:RoomID" json:"grants,omitempty"`
}

func (Room) TableName() string {
	return "rooms"
}

// RoomGrant records a host-granted capability for a non-host user.
type RoomGrant struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_room_user_cap" json:"room_id"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_room_user_cap" json:"user_id"`
	Capability string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_room_user_cap" json:"capability"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RoomGrant) TableName() string {
	return "room_grants"
}

// ChatMessage is one immutable chat entry, attributed to a sender or the
// system (join/leave/mute notices).
type ChatMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     string    `gorm:"type:varchar(100);not null;index:idx_chat_room_created" json:"room_id"`
	SenderID   int64     `gorm:"not null" json:"sender_id"`
	SenderName string    `gorm:"type:varchar(100);not null" json:"sender_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Type       string    `gorm:"type:varchar(20);default:'text'" json:"type"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_chat_room_created" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
