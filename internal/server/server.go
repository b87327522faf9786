package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/config"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/room"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/state"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/voice"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/server/handler"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/server/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源，生产环境需要限制
	},
	EnableCompression: false,
}

// Server WebSocket 服务器
type Server struct {
	config     *config.Config
	redis      *redis.Client
	redisStore *storage.RedisStore
	rooms      *room.Manager
	voice      *voice.Manager
	handler    *handler.Handler
	clients    map[string]*Client
	clientsMu  sync.RWMutex
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	// 初始化 Redis 客户端
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	s := &Server{
		config:     cfg,
		redis:      rdb,
		redisStore: storage.NewRedisStore(rdb),
		clients:    make(map[string]*Client),
	}

	// 初始化房间注册表
	s.rooms = room.NewManager(s.redisStore, room.Config{
		SettleDelay:    cfg.Game.SettleDelayDuration(),
		ReconnectGrace: cfg.Game.ReconnectGraceDuration(),
		HostAutoJoin:   cfg.Game.HostAutoJoin,
		Game: state.Config{
			ActionWindow: cfg.Game.ActionWindowDuration(),
			RestartDelay: cfg.Game.RestartDelayDuration(),
			NoticeTTL:    cfg.Game.NoticeTTLDuration(),
		},
	})

	// 初始化语音入场排队器
	s.voice = voice.NewManager(s.rooms, cfg.Voice.JoinIntervalDuration())

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.Deps{
		Rooms: s.rooms,
		Voice: s.voice,
	})

	return s, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/health", s.handleHealth)
	http.HandleFunc("/qr", s.handleQRCode)

	// 启动监控 goroutine
	go s.monitorStats()

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	server := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}
