package store

import (
	"context"
	"errors"

	"collabboard-backend/internal/model"
)

// ErrRoomNotFound is returned when a join references a room the
// authorization provider cannot resolve.
var ErrRoomNotFound = errors.New("room not found")

// OperationStore is the durable append-only log of canvas operations,
// keyed by room and page.
type OperationStore interface {
	Append(ctx context.Context, op *model.BoardOperation) error
	// ListSince returns operations with ID > sinceID in append order.
	ListSince(ctx context.Context, roomID, page string, sinceID int64) ([]model.BoardOperation, error)
	Clear(ctx context.Context, roomID, page string) error
}

// RoomStore answers authorization questions for a room and persists
// grant/revoke/mute changes. Room creation belongs to the CRUD layer.
type RoomStore interface {
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
	// Grants returns the allowed-drawer and allowed-screen-sharer user sets.
	Grants(ctx context.Context, roomID string) (draw []int64, screenShare []int64, err error)
	Grant(ctx context.Context, roomID string, userID int64, capability string) error
	Revoke(ctx context.Context, roomID string, userID int64, capability string) error
	SetChatMuted(ctx context.Context, roomID string, muted bool) error
}

// ChatStore persists chat messages and serves the bounded history window.
type ChatStore interface {
	Append(ctx context.Context, msg *model.ChatMessage) error
	// Recent returns up to limit messages in chronological order.
	Recent(ctx context.Context, roomID string, limit int) ([]model.ChatMessage, error)
}
