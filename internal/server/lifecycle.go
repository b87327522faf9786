package server

import (
	"log"
	"runtime"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		log.Printf("📊 [监控] 在线: %d | 房间: %d | Goroutines: %d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.rooms.ActiveRoomCount(),
			runtime.NumGoroutine(),
			float64(m.Alloc)/1024/1024)
	}
}

// Shutdown 关闭服务器：通知所有在线客户端，断开连接并释放 Redis
func (s *Server) Shutdown() {
	s.Broadcast(codec.MustNewMessage(protocol.MsgUIMessage, &protocol.UINotice{
		Text:      "服务器正在关闭，连接即将断开",
		ExpiresAt: time.Now().Add(5 * time.Second).UnixMilli(),
	}))

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	_ = s.redis.Close()

	log.Println("服务器已关闭")
}
