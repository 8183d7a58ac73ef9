package hub

import (
	"encoding/json"

	"collabboard-backend/internal/board"
	"collabboard-backend/internal/model"
	"collabboard-backend/internal/presence"
)

// Client→server message kinds.
const (
	MsgJoinRoom  = "join-room"
	MsgLeaveRoom = "leave-room"

	MsgDrawStart  = "draw-start"
	MsgDrawMove   = "draw-move"
	MsgDrawEnd    = "draw-end"
	MsgDrawShape  = "draw-shape"
	MsgAddText    = "add-text"
	MsgClearBoard = "clear-board"
	MsgUndo       = "undo"
	MsgRedo       = "redo"
	MsgCursorMove = "cursor-move"
	MsgChangePage = "change-page"

	MsgGrantAccess       = "grant-access"
	MsgRevokeAccess      = "revoke-access"
	MsgGrantScreenShare  = "grant-screen-share"
	MsgRevokeScreenShare = "revoke-screen-share"
	MsgToggleChatMute    = "toggle-chat-mute"
	MsgSendMessage       = "send-message"

	MsgCallUser        = "call-user"
	MsgCallEnded       = "call-ended"
	MsgToggleMedia     = "toggle-media"
	MsgWebRTCOffer     = "webrtc-offer"
	MsgWebRTCAnswer    = "webrtc-answer"
	MsgWebRTCCandidate = "webrtc-ice-candidate"
)

// Server→client message kinds (those not echoing a client kind above).
const (
	MsgUsersUpdated     = "users-updated"
	MsgWhiteboardData   = "whiteboard-data"
	MsgAccessUpdated    = "access-updated"
	MsgChatMuteUpdated  = "chat-mute-updated"
	MsgMessageHistory   = "message-history"
	MsgNewMessage       = "new-message"
	MsgChatBlocked      = "chat-blocked"
	MsgPermissionDenied = "permission-denied"
	MsgError            = "error"
	MsgBoardCleared     = "board-cleared"
	MsgPageChanged      = "page-changed"
	MsgRoomDeleted      = "room-deleted"
	MsgUserKicked       = "user-kicked"
	MsgCallStarted      = "call-started"
	MsgCallParticipants = "call-participants"
	MsgMediaToggled     = "media-toggled"
)

// Envelope 모든 WebSocket 메시지의 공통 포맷
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSMessage is the outbound counterpart of Envelope.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ==================== client→server payloads ====================

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// DrawLivePayload carries draw-start/draw-move point data, relayed for live
// feedback and never persisted.
type DrawLivePayload struct {
	Page      string  `json:"page,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color,omitempty"`
	BrushSize float64 `json:"brushSize,omitempty"`
	Tool      string  `json:"tool,omitempty"`
}

// DrawEndPayload carries the fully assembled stroke.
type DrawEndPayload struct {
	Page   string          `json:"page,omitempty"`
	Stroke board.Operation `json:"stroke"`
}

type DrawShapePayload struct {
	Page      string          `json:"page,omitempty"`
	ShapeData board.Operation `json:"shapeData"`
}

type AddTextPayload struct {
	Page     string          `json:"page,omitempty"`
	TextData board.Operation `json:"textData"`
}

type PagePayload struct {
	Page string `json:"page,omitempty"`
}

type CursorMovePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type AccessPayload struct {
	UserID int64 `json:"userId"`
}

type SendMessagePayload struct {
	Content string `json:"content"`
}

type CallUserPayload struct {
	MediaType string `json:"mediaType"` // "audio" or "video"
}

type ToggleMediaPayload struct {
	AudioEnabled    bool `json:"audioEnabled"`
	VideoEnabled    bool `json:"videoEnabled"`
	IsScreenSharing bool `json:"isScreenSharing"`
}

// SignalPayload addresses one peer by connection id; the SDP/candidate body
// is relayed verbatim.
type SignalPayload struct {
	TargetSocketID string          `json:"targetSocketId"`
	Offer          json.RawMessage `json:"offer,omitempty"`
	Answer         json.RawMessage `json:"answer,omitempty"`
	Candidate      json.RawMessage `json:"candidate,omitempty"`
}

// ==================== server→client payloads ====================

// CatchUpPayload is the whiteboard-data snapshot a joining session receives
// before any of its own submissions are echoed back.
type CatchUpPayload struct {
	Page       string            `json:"page"`
	Pages      []string          `json:"pages"`
	Operations []board.Operation `json:"operations"`
	CanUndo    bool              `json:"canUndo"`
	CanRedo    bool              `json:"canRedo"`
}

// AccessState is always broadcast in full so clients reconcile after missed
// messages.
type AccessState struct {
	HostID               int64   `json:"hostId"`
	AllowedDrawers       []int64 `json:"allowedDrawers"`
	AllowedScreenSharers []int64 `json:"allowedScreenSharers"`
}

type ChatMuteState struct {
	ChatMuted bool `json:"chatMuted"`
}

type NoticePayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type UsersUpdatedPayload struct {
	Users []presence.Member `json:"users"`
}

type MessageHistoryPayload struct {
	Messages []model.ChatMessage `json:"messages"`
}

type CallStartedPayload struct {
	CallerID       int64  `json:"callerId"`
	CallerName     string `json:"callerName"`
	CallerSocketID string `json:"callerSocketId"`
	MediaType      string `json:"mediaType"`
}

// CallParticipant is one in-call member's state as seen by a late joiner.
type CallParticipant struct {
	UserID          int64  `json:"userId"`
	Username        string `json:"username"`
	SocketID        string `json:"socketId"`
	AudioEnabled    bool   `json:"audioEnabled"`
	VideoEnabled    bool   `json:"videoEnabled"`
	IsScreenSharing bool   `json:"isScreenSharing"`
}

// CallParticipantsPayload is the ongoing-call roster pushed on join.
type CallParticipantsPayload struct {
	Participants []CallParticipant `json:"participants"`
}

type CallEndedPayload struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	SocketID string `json:"socketId"`
}

type MediaToggledPayload struct {
	UserID          int64  `json:"userId"`
	SocketID        string `json:"socketId"`
	AudioEnabled    bool   `json:"audioEnabled"`
	VideoEnabled    bool   `json:"videoEnabled"`
	IsScreenSharing bool   `json:"isScreenSharing"`
}
