package room

import (
	"context"
	"log"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/apperrors"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/roles"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// CreateRoom 创建房间。房主默认不自动入座，和其他玩家一样显式加入。
func (rm *Manager) CreateRoom(client types.ClientInterface, p protocol.CreateRoomPayload) (*Room, error) {
	if !roles.Supported(p.Capacity) {
		return nil, &apperrors.GameError{Code: protocol.ErrCodeUnknown, Message: "房间人数须在 5-9 之间"}
	}

	rm.mu.Lock()
	if _, exists := rm.rooms[p.RoomID]; exists {
		rm.mu.Unlock()
		return nil, apperrors.ErrRoomExists
	}

	room := &Room{
		ID:        p.RoomID,
		Name:      p.RoomName,
		Password:  p.Password,
		Capacity:  p.Capacity,
		HostName:  p.HostName,
		Ready:     make(map[string]bool),
		CreatedAt: time.Now(),
	}

	if rm.cfg.HostAutoJoin && client != nil {
		room.Players = append(room.Players, &Player{
			Client:   client,
			Name:     p.HostName,
			Position: 0,
		})
		room.Ready[p.HostName] = false
		client.SetName(p.HostName)
		client.SetRoom(room.ID)
	}

	rm.rooms[room.ID] = room
	rm.mu.Unlock()

	rm.persistInfo(room)
	rm.persistPlayers(room)
	rm.broadcastRoster(room)

	log.Printf("🏠 房间 %s (%s) 已创建，房主 %s，容量 %d", room.ID, room.Name, room.HostName, room.Capacity)
	return room, nil
}

// JoinRoom 加入房间。同名重入视为断线重连：重新绑定连接并清除断线标记，
// 不占用新座位。房间刚好满员且全员在线时，武装满员缓冲计时器。
func (rm *Manager) JoinRoom(client types.ClientInterface, roomID, password, name string) (*Room, error) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()

	if room.Password != "" && room.Password != password {
		room.mu.Unlock()
		return nil, apperrors.ErrBadPassword
	}

	if seat := room.findPlayerLocked(name); seat != nil {
		// 重连：恢复连接句柄，保留座位和角色
		seat.Client = client
		seat.DisconnectedAt = time.Time{}
		client.SetName(name)
		client.SetRoom(roomID)
		// 掉线曾让满员缓冲放弃开局，重连补齐后重新武装
		if room.isFullLocked() && room.allConnectedLocked() && room.Game == nil {
			rm.armSettleLocked(room)
		}
		game := room.Game
		room.mu.Unlock()

		rm.persistPlayers(room)
		rm.broadcastRoster(room)
		if game != nil {
			game.SetConnected(name, true)
			client.SendMessage(codec.MustNewMessage(protocol.MsgGameStateUpdate, game.Snapshot()))
		}

		log.Printf("📶 玩家 %s 重连到房间 %s", name, roomID)
		return room, nil
	}

	if room.isFullLocked() {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomFull
	}

	room.Players = append(room.Players, &Player{
		Client:   client,
		Name:     name,
		Position: len(room.Players),
	})
	room.Ready[name] = false
	client.SetName(name)
	client.SetRoom(roomID)

	if room.isFullLocked() && room.allConnectedLocked() && room.Game == nil {
		rm.armSettleLocked(room)
	}
	count := len(room.Players)
	room.mu.Unlock()

	rm.persistPlayers(room)
	rm.persistReady(room)
	rm.broadcastRoster(room)

	log.Printf("👤 玩家 %s 加入房间 %s (%d/%d)", name, roomID, count, room.Capacity)
	return room, nil
}

// SetReadyState 设置准备状态，幂等
func (rm *Manager) SetReadyState(roomID, name string, ready bool) error {
	room := rm.GetRoom(roomID)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	if room.findPlayerLocked(name) == nil {
		room.mu.Unlock()
		return apperrors.ErrNotInRoom
	}
	room.Ready[name] = ready
	room.mu.Unlock()

	rm.persistReady(room)
	rm.broadcastRoster(room)
	return nil
}

// StartGame 开始游戏。未满员或有人未准备时不做任何事。
func (rm *Manager) StartGame(roomID string) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	if room.Game != nil || !room.isFullLocked() || !room.allReadyLocked() {
		room.mu.Unlock()
		return
	}
	game := rm.initGameLocked(room)
	room.mu.Unlock()

	if game != nil {
		rm.persistPlayers(room)
		rm.persistGameStart(room, game)
	}
}

// LeaveRoom 离开房间，座位腾出；房间空了就解散
func (rm *Manager) LeaveRoom(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	name := client.GetName()

	room.mu.Lock()
	seat := room.findPlayerLocked(name)
	if seat == nil {
		room.mu.Unlock()
		return
	}
	rm.removeSeatLocked(room, name)
	client.SetRoom("")
	empty := len(room.Players) == 0
	room.mu.Unlock()

	log.Printf("👋 玩家 %s 离开房间 %s", name, roomID)

	if empty {
		rm.deleteRoom(room)
		return
	}
	rm.persistPlayers(room)
	rm.persistReady(room)
	rm.broadcastRoster(room)
}

// TogglePartyHost 切换玩家的派对主持人标记
func (rm *Manager) TogglePartyHost(roomID, name string) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	seat := room.findPlayerLocked(name)
	if seat == nil {
		room.mu.Unlock()
		return
	}
	seat.IsPartyHost = !seat.IsPartyHost
	names, flags := room.partyHostsLocked()
	game := room.Game
	room.mu.Unlock()

	rm.persistPlayers(room)
	room.Broadcast(codec.MustNewMessage(protocol.MsgPartyHostsUpdate, protocol.PartyHostsUpdatePayload{
		PartyHosts: names,
	}))
	if game != nil {
		game.SyncPartyHosts(flags)
	}
}

// ResetPartyHosts 清空房间内所有派对主持人标记
func (rm *Manager) ResetPartyHosts(roomID string) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	for _, p := range room.Players {
		p.IsPartyHost = false
	}
	_, flags := room.partyHostsLocked()
	game := room.Game
	room.mu.Unlock()

	rm.persistPlayers(room)
	room.Broadcast(codec.MustNewMessage(protocol.MsgPartyHostsUpdate, protocol.PartyHostsUpdatePayload{
		PartyHosts: []string{},
	}))
	if game != nil {
		game.SyncPartyHosts(flags)
	}
}

// removeSeatLocked 移除座位及其准备状态，保留其余玩家的 position
func (rm *Manager) removeSeatLocked(room *Room, name string) {
	for i, p := range room.Players {
		if p.Name == name {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	delete(room.Ready, name)
}

// deleteRoom 解散房间：作废计时器、终止游戏、删除持久化记录
func (rm *Manager) deleteRoom(room *Room) {
	room.mu.Lock()
	room.settleGen++
	if room.settleTimer != nil {
		room.settleTimer.Stop()
		room.settleTimer = nil
	}
	game := room.Game
	room.Game = nil
	room.mu.Unlock()

	if game != nil {
		game.Stop()
	}

	rm.mu.Lock()
	delete(rm.rooms, room.ID)
	rm.mu.Unlock()

	go func() { _ = rm.store.DeleteRoom(context.Background(), room.ID) }()
	log.Printf("🏠 房间 %s 已解散", room.ID)
}

// broadcastRoster 广播玩家名单
func (rm *Manager) broadcastRoster(room *Room) {
	room.mu.Lock()
	payload := room.rosterLocked()
	room.mu.Unlock()

	room.Broadcast(codec.MustNewMessage(protocol.MsgPlayerListUpdate, payload))
}

// --- 持久化（异步，失败不阻断流程） ---

func (rm *Manager) persistInfo(room *Room) {
	room.mu.Lock()
	info := room.infoDataLocked()
	room.mu.Unlock()
	go func() { _ = rm.store.SaveRoomInfo(context.Background(), room.ID, info) }()
}

func (rm *Manager) persistPlayers(room *Room) {
	room.mu.Lock()
	players := room.playerDataLocked()
	room.mu.Unlock()
	go func() { _ = rm.store.SavePlayers(context.Background(), room.ID, players) }()
}

func (rm *Manager) persistReady(room *Room) {
	room.mu.Lock()
	ready := make(map[string]bool, len(room.Ready))
	for k, v := range room.Ready {
		ready[k] = v
	}
	room.mu.Unlock()
	go func() { _ = rm.store.SaveReadyStates(context.Background(), room.ID, ready) }()
}
