package room

import (
	"log"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/roles"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/state"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// --- 满员缓冲 ---

// armSettleLocked 武装满员缓冲计时器。到期时重新校验房间状态，
// 避免在玩家进出抖动的瞬间分配角色。调用方需持有房间锁。
func (rm *Manager) armSettleLocked(room *Room) {
	room.settleGen++
	gen := room.settleGen
	if room.settleTimer != nil {
		room.settleTimer.Stop()
	}
	room.settleTimer = time.AfterFunc(rm.cfg.SettleDelay, func() {
		rm.settleExpired(room.ID, gen)
	})
	log.Printf("⏳ 房间 %s 已满员，%v 后分配角色", room.ID, rm.cfg.SettleDelay)
}

// settleExpired 满员缓冲到期。只信任此刻重新读到的状态：
// 代数不符、已开局、不再满员或有座位掉线都直接放弃。
func (rm *Manager) settleExpired(roomID string, gen int) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	if gen != room.settleGen || room.Game != nil {
		room.mu.Unlock()
		return
	}
	if !room.isFullLocked() || !room.allConnectedLocked() {
		room.mu.Unlock()
		log.Printf("⏳ 房间 %s 缓冲期内人员变动，暂不分配角色", roomID)
		return
	}
	game := rm.initGameLocked(room)
	room.mu.Unlock()

	if game != nil {
		rm.persistPlayers(room)
		rm.persistGameStart(room, game)
	}
}

// initGameLocked 分配角色并构建游戏状态，调用方需持有房间锁。
// 人数没有预设角色池时视为配置错误，不做任何按位置的兜底分配。
func (rm *Manager) initGameLocked(room *Room) *state.Game {
	assigned := roles.Distribute(len(room.Players))
	if len(assigned) == 0 {
		log.Printf("⚠️ 房间 %s 玩家数 %d 无预设角色池，无法开局", room.ID, len(room.Players))
		return nil
	}

	seats := make([]state.Seat, len(room.Players))
	for i, p := range room.Players {
		p.Role = assigned[i]
		seats[i] = state.Seat{
			Name:        p.Name,
			Position:    p.Position,
			IsHost:      p.Name == room.HostName,
			IsPartyHost: p.IsPartyHost,
		}
	}

	game := state.NewGame(room.ID, room.HostName, seats, assigned, rm.cfg.Game, rm.store, room)
	room.Game = game

	log.Printf("🎭 房间 %s 开局，%d 名玩家的角色已分配", room.ID, len(room.Players))
	return game
}

// persistGameStart 开局后的持久化与广播（锁外调用）
func (rm *Manager) persistGameStart(room *Room, game *state.Game) {
	game.BroadcastInitial()
}

// --- 断线监护 ---

// HandleDisconnect 传输层断开。不立即移除座位：标记断线时间、
// 清空连接句柄，并武装保座计时器等待重连。
func (rm *Manager) HandleDisconnect(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	var seat *Player
	for _, p := range room.Players {
		if p.Client != nil && p.Client.GetID() == client.GetID() {
			seat = p
			break
		}
	}
	if seat == nil {
		room.mu.Unlock()
		return
	}

	seat.Client = nil
	seat.DisconnectedAt = time.Now()
	name := seat.Name
	game := room.Game
	room.mu.Unlock()

	rm.persistPlayers(room)
	rm.broadcastRoster(room)
	if game != nil {
		game.SetConnected(name, false)
	}

	time.AfterFunc(rm.cfg.ReconnectGrace, func() {
		rm.reap(roomID, name)
	})

	log.Printf("📴 玩家 %s 在房间 %s 中掉线，保座 %v", name, roomID, rm.cfg.ReconnectGrace)
}

// reap 保座计时器到期。不信任武装时捕获的状态，按此刻重新读到的
// 座位判断：已重连、或属于更晚一次掉线的座位都不动。
func (rm *Manager) reap(roomID, name string) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	seat := room.findPlayerLocked(name)
	if seat == nil || seat.Client != nil || seat.DisconnectedAt.IsZero() {
		room.mu.Unlock()
		return
	}
	if time.Since(seat.DisconnectedAt) < rm.cfg.ReconnectGrace {
		// 更晚一次掉线武装了自己的计时器，这里不抢收
		room.mu.Unlock()
		return
	}

	rm.removeSeatLocked(room, name)
	empty := len(room.Players) == 0
	room.mu.Unlock()

	log.Printf("⏰ 玩家 %s 超过保座时限，移出房间 %s", name, roomID)

	if empty {
		rm.deleteRoom(room)
		return
	}
	rm.persistPlayers(room)
	rm.persistReady(room)
	rm.broadcastRoster(room)
}
