package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
	Voice  VoiceConfig  `yaml:"voice"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // 二维码中的入口地址
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	SettleDelay    int  `yaml:"settle_delay"`    // 满员后分配角色前的缓冲（秒）
	ActionWindow   int  `yaml:"action_window"`   // love/hate 窗口时长（秒）
	RestartDelay   int  `yaml:"restart_delay"`   // 重开游戏的延迟（秒）
	ReconnectGrace int  `yaml:"reconnect_grace"` // 断线保座时长（秒）
	NoticeTTL      int  `yaml:"notice_ttl"`      // 界面提示的展示时长（秒）
	HostAutoJoin   bool `yaml:"host_auto_join"`  // 创建房间时房主是否自动入座
}

// VoiceConfig 语音频道配置
type VoiceConfig struct {
	JoinInterval int `yaml:"join_interval"` // 相邻语音入场之间的间隔（秒）
}

// SettleDelayDuration 返回满员缓冲时长
func (c *GameConfig) SettleDelayDuration() time.Duration {
	return time.Duration(c.SettleDelay) * time.Second
}

// ActionWindowDuration 返回 love/hate 窗口时长
func (c *GameConfig) ActionWindowDuration() time.Duration {
	return time.Duration(c.ActionWindow) * time.Second
}

// RestartDelayDuration 返回重开延迟时长
func (c *GameConfig) RestartDelayDuration() time.Duration {
	return time.Duration(c.RestartDelay) * time.Second
}

// ReconnectGraceDuration 返回断线保座时长
func (c *GameConfig) ReconnectGraceDuration() time.Duration {
	return time.Duration(c.ReconnectGrace) * time.Second
}

// NoticeTTLDuration 返回提示展示时长
func (c *GameConfig) NoticeTTLDuration() time.Duration {
	return time.Duration(c.NoticeTTL) * time.Second
}

// JoinIntervalDuration 返回语音入场间隔
func (c *VoiceConfig) JoinIntervalDuration() time.Duration {
	return time.Duration(c.JoinInterval) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 填充缺省值
func (cfg *Config) applyDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:3000"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.SettleDelay == 0 {
		cfg.Game.SettleDelay = 2
	}
	if cfg.Game.ActionWindow == 0 {
		cfg.Game.ActionWindow = 10
	}
	if cfg.Game.RestartDelay == 0 {
		cfg.Game.RestartDelay = 5
	}
	if cfg.Game.ReconnectGrace == 0 {
		cfg.Game.ReconnectGrace = 30
	}
	if cfg.Game.NoticeTTL == 0 {
		cfg.Game.NoticeTTL = 8
	}
	if cfg.Voice.JoinInterval == 0 {
		cfg.Voice.JoinInterval = 2
	}
}
