package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/config"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/logger"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/server"
)

func main() {
	// .env 不存在时静默跳过，环境变量只覆盖敏感项
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	if err := logger.Init(os.Getenv("LOG_FILE")); err != nil {
		log.Printf("初始化文件日志失败: %v", err)
	}
	defer logger.Close()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("正在关闭服务器...")
		srv.Shutdown()
		os.Exit(0)
	}()

	// 启动服务器
	log.Println("🎉 派对游戏服务器启动中...")
	if err := srv.Start(); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}

// applyEnvOverrides 环境变量覆盖配置文件中的敏感项
func applyEnvOverrides(cfg *config.Config) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if url := os.Getenv("PUBLIC_URL"); url != "" {
		cfg.Server.PublicURL = url
	}
}
