package room

import (
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/server/storage"
)

// infoDataLocked 将房间基础信息转为可序列化结构，调用方需持有房间锁
func (r *Room) infoDataLocked() *storage.RoomInfoData {
	return &storage.RoomInfoData{
		ID:        r.ID,
		Name:      r.Name,
		Password:  r.Password,
		Capacity:  r.Capacity,
		HostName:  r.HostName,
		CreatedAt: r.CreatedAt.Unix(),
	}
}

// playerDataLocked 将座位列表转为可序列化结构，调用方需持有房间锁
func (r *Room) playerDataLocked() []storage.PlayerData {
	players := make([]storage.PlayerData, 0, len(r.Players))
	for _, p := range r.Players {
		data := storage.PlayerData{
			Name:        p.Name,
			Position:    p.Position,
			Role:        string(p.Role),
			IsHost:      p.Name == r.HostName,
			IsPartyHost: p.IsPartyHost,
			Connected:   p.Client != nil,
		}
		if !p.DisconnectedAt.IsZero() {
			data.DisconnectedAt = p.DisconnectedAt.Unix()
		}
		players = append(players, data)
	}
	return players
}
