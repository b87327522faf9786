package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 房间记录的字段名（各子结构独立序列化，互不覆盖）
	fieldInfo    = "info"
	fieldPlayers = "players"
	fieldReady   = "ready"
	fieldGame    = "game"

	// 房间数据过期时间
	roomExpiration = 6 * time.Hour
)

// RoomInfoData 房间基础信息（用于 Redis 序列化）
type RoomInfoData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Capacity  int    `json:"capacity"`
	HostName  string `json:"host_name"`
	CreatedAt int64  `json:"created_at"`
}

// PlayerData 玩家数据
type PlayerData struct {
	Name           string `json:"name"`
	Position       int    `json:"position"`
	Role           string `json:"role,omitempty"`
	IsHost         bool   `json:"is_host"`
	IsPartyHost    bool   `json:"is_party_host"`
	Connected      bool   `json:"connected"`
	DisconnectedAt int64  `json:"disconnected_at,omitempty"`
}

// RoomRecord 一个房间的完整持久化记录
type RoomRecord struct {
	Info    *RoomInfoData
	Players []PlayerData
	Ready   map[string]bool
	Game    json.RawMessage // 游戏状态快照原文，由上层解释
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveRoomInfo 保存房间基础信息
func (rs *RedisStore) SaveRoomInfo(ctx context.Context, roomID string, info *RoomInfoData) error {
	return rs.setField(ctx, roomID, fieldInfo, info)
}

// SavePlayers 保存玩家列表
func (rs *RedisStore) SavePlayers(ctx context.Context, roomID string, players []PlayerData) error {
	return rs.setField(ctx, roomID, fieldPlayers, players)
}

// SaveReadyStates 保存准备状态表
func (rs *RedisStore) SaveReadyStates(ctx context.Context, roomID string, ready map[string]bool) error {
	return rs.setField(ctx, roomID, fieldReady, ready)
}

// SaveGameState 保存游戏状态快照（已序列化）
func (rs *RedisStore) SaveGameState(ctx context.Context, roomID string, snapshot []byte) error {
	key := roomKeyPrefix + roomID
	if err := rs.client.HSet(ctx, key, fieldGame, snapshot).Err(); err != nil {
		return err
	}
	return rs.client.Expire(ctx, key, roomExpiration).Err()
}

// LoadRoom 加载房间完整记录，房间不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*RoomRecord, error) {
	key := roomKeyPrefix + roomID
	fields, err := rs.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil // 房间不存在
	}

	record := &RoomRecord{Ready: make(map[string]bool)}

	if raw, ok := fields[fieldInfo]; ok {
		var info RoomInfoData
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			return nil, fmt.Errorf("反序列化房间信息失败: %w", err)
		}
		record.Info = &info
	}
	if raw, ok := fields[fieldPlayers]; ok {
		if err := json.Unmarshal([]byte(raw), &record.Players); err != nil {
			return nil, fmt.Errorf("反序列化玩家列表失败: %w", err)
		}
	}
	if raw, ok := fields[fieldReady]; ok {
		if err := json.Unmarshal([]byte(raw), &record.Ready); err != nil {
			return nil, fmt.Errorf("反序列化准备状态失败: %w", err)
		}
	}
	if raw, ok := fields[fieldGame]; ok {
		record.Game = json.RawMessage(raw)
	}

	return record, nil
}

// DeleteRoom 删除房间记录
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	return rs.client.Del(ctx, roomKeyPrefix+roomID).Err()
}

// DeleteGameState 仅删除游戏状态字段（重开前的清场）
func (rs *RedisStore) DeleteGameState(ctx context.Context, roomID string) error {
	return rs.client.HDel(ctx, roomKeyPrefix+roomID, fieldGame).Err()
}

// RoomIDs 枚举所有房间 ID
func (rs *RedisStore) RoomIDs(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = key[len(roomKeyPrefix):]
	}
	return ids, nil
}

// setField 序列化并写入单个字段，同时续期
func (rs *RedisStore) setField(ctx context.Context, roomID, field string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", field, err)
	}

	key := roomKeyPrefix + roomID
	if err := rs.client.HSet(ctx, key, field, data).Err(); err != nil {
		return err
	}
	return rs.client.Expire(ctx, key, roomExpiration).Err()
}
