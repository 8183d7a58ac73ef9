package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"collabboard-backend/internal/model"
)

// RedisClient keeps the hot recent-chat window per room so late joiners get
// message-history without a DB round trip. Postgres stays the durable store;
// a cache miss falls back to it.
type RedisClient struct {
	client *redis.Client
	window int64
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db, historyWindow int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client, window: int64(historyWindow)}, nil
}

func chatKey(roomID string) string {
	return "room:" + roomID + ":chat"
}

// AddMessage appends a message to the room's window and trims it to the
// configured length.
func (r *RedisClient) AddMessage(ctx context.Context, roomID string, msg *model.ChatMessage) error {
	key := chatKey(roomID)

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -r.window, -1)
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Redis] Failed to cache chat message: %v", err)
		return err
	}

	return nil
}

// RecentMessages retrieves up to count messages in chronological order.
func (r *RedisClient) RecentMessages(ctx context.Context, roomID string, count int64) ([]model.ChatMessage, error) {
	results, err := r.client.LRange(ctx, chatKey(roomID), -count, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]model.ChatMessage, 0, len(results))
	for _, data := range results {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}

	return messages, nil
}

// DeleteRoom removes the cached window for a room.
func (r *RedisClient) DeleteRoom(ctx context.Context, roomID string) error {
	return r.client.Del(ctx, chatKey(roomID)).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Health checks if Redis is healthy
func (r *RedisClient) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
