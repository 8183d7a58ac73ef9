package main

import (
	"log"

	"collabboard-backend/internal/cache"
	"collabboard-backend/internal/config"
	"collabboard-backend/internal/database"
	"collabboard-backend/internal/hub"
	"collabboard-backend/internal/presence"
	"collabboard-backend/internal/server"
	"collabboard-backend/internal/store"
)

func main() {
	// 설정 로드
	cfg := config.Load()

	// 데이터베이스 연결
	db, err := database.ConnectDB()
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close()

	// Ping 테스트
	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}
	log.Printf("✅ Database connected successfully")

	// Redis 연결 (선택적 - 실패 시 DB 폴백)
	var redisClient *cache.RedisClient
	redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Chat.HistoryWindow)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, chat history will serve from DB: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// 스토어 및 허브 초기화
	registry := presence.NewRegistry()
	roomStore := store.NewGormRoomStore(db)
	opStore := store.NewGormOperationStore(db)
	chatStore := store.NewGormChatStore(db, redisClient)

	h := hub.New(registry, roomStore, opStore, chatStore, cfg.Board, cfg.Chat)

	// 서버 생성 및 설정
	srv := server.New(cfg, db, h, redisClient)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	// 서버 시작
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
