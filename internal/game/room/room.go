package room

import (
	"sync"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/roles"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/state"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/server/storage"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// Player 房间中的一个座位
type Player struct {
	Client         types.ClientInterface // nil 表示断线等待重连
	Name           string                // 房间内唯一
	Position       int                   // 入座顺序，角色按此对齐
	Role           roles.Role
	IsPartyHost    bool
	DisconnectedAt time.Time // 零值表示在线
}

// Room 游戏房间。所有读改写都在房间锁内完成，
// 同一房间的并发处理不会在读和写之间交错。
type Room struct {
	ID        string
	Name      string
	Password  string
	Capacity  int
	HostName  string // 创建时指定的名字即房主
	Players   []*Player
	Ready     map[string]bool
	CreatedAt time.Time
	Game      *state.Game // 未开局时为 nil

	mu          sync.Mutex
	settleGen   int // 满员缓冲计时器的代数守卫
	settleTimer *time.Timer
}

// Config 房间注册表配置
type Config struct {
	SettleDelay    time.Duration // 满员后分配角色前的缓冲
	ReconnectGrace time.Duration // 断线保座时长
	HostAutoJoin   bool          // 创建房间时房主是否自动入座
	Game           state.Config  // 传给游戏状态的时序配置
}

// Manager 房间注册表
type Manager struct {
	store *storage.RedisStore
	cfg   Config
	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewManager 创建房间注册表
func NewManager(store *storage.RedisStore, cfg Config) *Manager {
	return &Manager{
		store: store,
		cfg:   cfg,
		rooms: make(map[string]*Room),
	}
}

// GetRoom 按 ID 获取房间
func (rm *Manager) GetRoom(roomID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[roomID]
}

// GetGame 获取房间的游戏状态，房间不存在或未开局时返回 nil
func (rm *Manager) GetGame(roomID string) *state.Game {
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.Game
}

// ActiveRoomCount 统计当前房间数
func (rm *Manager) ActiveRoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// BroadcastToRoom 向房间内所有在线玩家广播
func (rm *Manager) BroadcastToRoom(roomID string, msg *protocol.Message) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}
	room.Broadcast(msg)
}

// Broadcast 向房间内所有在线玩家广播
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.Lock()
	clients := make([]types.ClientInterface, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Client != nil {
			clients = append(clients, p.Client)
		}
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.SendMessage(msg)
	}
}

// SendToPlayer 向指定玩家单发，玩家不在线时返回 false
func (r *Room) SendToPlayer(name string, msg *protocol.Message) bool {
	r.mu.Lock()
	var target types.ClientInterface
	for _, p := range r.Players {
		if p.Name == name && p.Client != nil {
			target = p.Client
			break
		}
	}
	r.mu.Unlock()

	if target == nil {
		return false
	}
	target.SendMessage(msg)
	return true
}

// SyncRoles 游戏重开洗牌后把新角色写回座位，名单广播随之跟上
func (r *Room) SyncRoles(rolesByName map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if role, ok := rolesByName[p.Name]; ok {
			p.Role = roles.Role(role)
		}
	}
}

// rosterLocked 构建玩家名单负载，调用方需持有房间锁
func (r *Room) rosterLocked() *protocol.PlayerListUpdatePayload {
	payload := &protocol.PlayerListUpdatePayload{
		RoomID:      r.ID,
		RoomName:    r.Name,
		HostName:    r.HostName,
		Capacity:    r.Capacity,
		Players:     make([]protocol.PlayerInfo, 0, len(r.Players)),
		ReadyStates: make(map[string]bool, len(r.Ready)),
	}
	for _, p := range r.Players {
		payload.Players = append(payload.Players, protocol.PlayerInfo{
			Name:        p.Name,
			Role:        string(p.Role),
			Position:    p.Position,
			IsHost:      p.Name == r.HostName,
			IsPartyHost: p.IsPartyHost,
			Connected:   p.Client != nil,
		})
	}
	for name, ready := range r.Ready {
		payload.ReadyStates[name] = ready
	}
	return payload
}

// findPlayerLocked 按名字查座位
func (r *Room) findPlayerLocked(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// isFullLocked 判断是否满员
func (r *Room) isFullLocked() bool {
	return len(r.Players) == r.Capacity
}

// allConnectedLocked 判断所有座位是否都有活跃连接
func (r *Room) allConnectedLocked() bool {
	for _, p := range r.Players {
		if p.Client == nil {
			return false
		}
	}
	return true
}

// allReadyLocked 判断所有玩家是否都已准备
func (r *Room) allReadyLocked() bool {
	for _, p := range r.Players {
		if !r.Ready[p.Name] {
			return false
		}
	}
	return len(r.Players) > 0
}

// partyHostsLocked 收集派对主持人标记
func (r *Room) partyHostsLocked() (names []string, flags map[string]bool) {
	flags = make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		flags[p.Name] = p.IsPartyHost
		if p.IsPartyHost {
			names = append(names, p.Name)
		}
	}
	return names, flags
}
