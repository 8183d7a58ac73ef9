package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collabboard-backend/internal/cache"
	"collabboard-backend/internal/hub"
	"collabboard-backend/internal/model"
)

// RoomHandler 방 CRUD 핸들러
// Room lifecycle is HTTP; everything that happens inside a live room goes
// through the WebSocket hub. Deleting or kicking here pushes forced-leave
// notices to connected sessions.
type RoomHandler struct {
	db    *gorm.DB
	hub   *hub.Hub
	cache *cache.RedisClient // nil when Redis is unavailable
}

// NewRoomHandler RoomHandler 생성
func NewRoomHandler(db *gorm.DB, h *hub.Hub, cache *cache.RedisClient) *RoomHandler {
	return &RoomHandler{db: db, hub: h, cache: cache}
}

// CreateRoomRequest 방 생성 요청
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoom 방 생성 (생성자가 호스트)
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	room := model.Room{
		RoomID: uuid.New().String(),
		Name:   req.Name,
		HostID: userID,
	}
	if err := h.db.Create(&room).Error; err != nil {
		log.Printf("[RoomHandler] create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create room"})
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetRoom 방 조회
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	roomID := c.Params("roomId")

	var room model.Room
	if err := h.db.Where("room_id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room"})
	}

	return c.JSON(room)
}

// DeleteRoom 방 삭제 (호스트만)
// Connected sessions get a room-deleted notice and are force-left before the
// durable state goes away.
func (h *RoomHandler) DeleteRoom(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	roomID := c.Params("roomId")

	var room model.Room
	if err := h.db.Where("room_id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room"})
	}
	if room.HostID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the host can delete the room"})
	}

	h.hub.NotifyRoomDeleted(roomID)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&model.RoomGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&model.BoardOperation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		log.Printf("[RoomHandler] delete %s failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete room"})
	}

	if h.cache != nil {
		if err := h.cache.DeleteRoom(c.Context(), roomID); err != nil {
			log.Printf("[RoomHandler] cache cleanup for %s failed: %v", roomID, err)
		}
	}

	return c.JSON(fiber.Map{"message": "room deleted"})
}

// KickUser 강제 퇴장 (호스트만)
func (h *RoomHandler) KickUser(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	roomID := c.Params("roomId")

	targetID, err := c.ParamsInt("userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var room model.Room
	if err := h.db.Where("room_id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room"})
	}
	if room.HostID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the host can kick users"})
	}
	if int64(targetID) == room.HostID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "the host cannot kick themselves"})
	}

	h.hub.KickUser(roomID, int64(targetID))

	return c.JSON(fiber.Map{"message": "user kicked"})
}
