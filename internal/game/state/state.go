package state

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/action"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/roles"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
)

// Broadcaster 房间内的消息出口
type Broadcaster interface {
	Broadcast(msg *protocol.Message)
	SendToPlayer(name string, msg *protocol.Message) bool
}

// Store 游戏状态的持久化出口
type Store interface {
	SaveGameState(ctx context.Context, roomID string, snapshot []byte) error
}

// roleSyncer 重开洗牌后把新角色推回房间座位的出口，出口不支持时跳过
type roleSyncer interface {
	SyncRoles(rolesByName map[string]string)
}

// Config 游戏时序配置
type Config struct {
	ActionWindow time.Duration // love/hate 两个窗口各自的时长
	RestartDelay time.Duration // restartGame 的延迟
	NoticeTTL    time.Duration // 界面提示的展示时长
}

// Seat 开局时的座位信息，由房间注册表提供
type Seat struct {
	Name        string
	Position    int
	IsHost      bool
	IsPartyHost bool
}

// Game 一个房间的权威游戏状态。
// 每次变更都整体持久化并整体广播，断线重连的客户端收到最新快照即完全追平。
type Game struct {
	roomID   string
	hostName string
	cfg      Config
	store    Store
	out      Broadcaster

	mu             sync.Mutex
	players        []protocol.PlayerInfo
	roles          []roles.Role
	isDay          bool
	partyCount     int
	scandalScore   int
	closeKnotScore int
	voteCount      int
	loveCount      int
	hateCount      int
	uiMessage      *protocol.UINotice
	used           protocol.UsedActions

	phase        *action.Phase
	restartGen   int
	restartTimer *time.Timer
}

// NewGame 按座位和已分配的角色构建新游戏，白天开局，计数器清零
func NewGame(roomID, hostName string, seats []Seat, assigned []roles.Role, cfg Config, store Store, out Broadcaster) *Game {
	g := &Game{
		roomID:   roomID,
		hostName: hostName,
		cfg:      cfg,
		store:    store,
		out:      out,
		isDay:    true,
		roles:    assigned,
		used:     newUsedActions(),
	}

	for i, seat := range seats {
		role := ""
		if i < len(assigned) {
			role = string(assigned[i])
		}
		g.players = append(g.players, protocol.PlayerInfo{
			Name:        seat.Name,
			Role:        role,
			Position:    seat.Position,
			IsHost:      seat.Name == hostName,
			IsPartyHost: seat.IsPartyHost,
			Connected:   true,
		})
	}

	return g
}

// BroadcastInitial 持久化并广播开局快照
func (g *Game) BroadcastInitial() {
	g.mu.Lock()
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persist(snap)
	g.out.Broadcast(codec.MustNewMessage(protocol.MsgInitialGameState, snap))
	g.out.Broadcast(codec.MustNewMessage(protocol.MsgGameStarted, nil))
}

// Snapshot 返回当前状态的深拷贝快照
func (g *Game) Snapshot() *protocol.GameStateSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// HostName 返回房主名
func (g *Game) HostName() string {
	return g.hostName
}

// Stop 终止游戏的所有后台计时器（房间解散时调用）
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelTimersLocked()
}

// SyncPartyHosts 用房间侧的派对主持人标记整体覆盖座位快照
func (g *Game) SyncPartyHosts(isPartyHost map[string]bool) {
	g.mu.Lock()
	for i := range g.players {
		g.players[i].IsPartyHost = isPartyHost[g.players[i].Name]
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
}

// SetConnected 同步座位的在线标记（断线/重连时调用）
func (g *Game) SetConnected(name string, connected bool) {
	g.mu.Lock()
	for i := range g.players {
		if g.players[i].Name == name {
			g.players[i].Connected = connected
		}
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
}

// resetLocked 重开：重新洗角色、切到夜晚、清空计数器和消耗台账
func (g *Game) resetLocked() {
	g.cancelTimersLocked()

	reshuffled := roles.Distribute(len(g.players))
	if len(reshuffled) == 0 {
		log.Printf("⚠️ 房间 %s 玩家数 %d 无预设角色池，保留原角色", g.roomID, len(g.players))
		reshuffled = g.roles
	}
	g.roles = reshuffled
	for i := range g.players {
		if i < len(reshuffled) {
			g.players[i].Role = string(reshuffled[i])
		}
	}

	g.isDay = false
	g.partyCount = 0
	g.scandalScore = 0
	g.closeKnotScore = 0
	g.voteCount = 0
	g.loveCount = 0
	g.hateCount = 0
	g.uiMessage = nil
	g.used = newUsedActions()
}

// cancelTimersLocked 作废重开计时器并终止进行中的行动轮
func (g *Game) cancelTimersLocked() {
	g.restartGen++
	if g.restartTimer != nil {
		g.restartTimer.Stop()
		g.restartTimer = nil
	}
	if g.phase != nil {
		g.phase.Stop()
		g.phase = nil
	}
}

// snapshotLocked 构建深拷贝快照，调用方需持有锁
func (g *Game) snapshotLocked() *protocol.GameStateSnapshot {
	snap := &protocol.GameStateSnapshot{
		RoomID:         g.roomID,
		Players:        make([]protocol.PlayerInfo, len(g.players)),
		Roles:          make([]string, len(g.roles)),
		IsDay:          g.isDay,
		PartyCount:     g.partyCount,
		ScandalScore:   g.scandalScore,
		CloseKnotScore: g.closeKnotScore,
		VoteCount:      g.voteCount,
		LoveCount:      g.loveCount,
		HateCount:      g.hateCount,
		UsedActions:    copyUsedActions(g.used),
	}
	copy(snap.Players, g.players)
	for i, r := range g.roles {
		snap.Roles[i] = string(r)
	}
	if g.uiMessage != nil {
		notice := *g.uiMessage
		snap.UIMessage = &notice
	}
	return snap
}

// persistAndBroadcast 持久化快照并整体广播
func (g *Game) persistAndBroadcast(snap *protocol.GameStateSnapshot) {
	g.persist(snap)
	g.out.Broadcast(codec.MustNewMessage(protocol.MsgGameStateUpdate, snap))
}

// persist 异步写入存储，失败只记日志，不阻断游戏
func (g *Game) persist(snap *protocol.GameStateSnapshot) {
	if g.store == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("序列化游戏状态失败: %v", err)
		return
	}
	roomID := g.roomID
	store := g.store
	go func() {
		if err := store.SaveGameState(context.Background(), roomID, data); err != nil {
			log.Printf("保存游戏状态失败 (房间 %s): %v", roomID, err)
		}
	}()
}

// notice 设置带过期时间的界面提示并单独推送一条 uiMessage
func (g *Game) noticeLocked(text string, ttl time.Duration) *protocol.UINotice {
	n := &protocol.UINotice{
		Text:      text,
		ExpiresAt: time.Now().Add(ttl).UnixMilli(),
	}
	g.uiMessage = n
	return n
}

func newUsedActions() protocol.UsedActions {
	return protocol.UsedActions{
		Vote:   make(map[string]bool),
		Love:   make(map[string]bool),
		Hate:   make(map[string]bool),
		Skills: make(map[string]map[string]bool),
	}
}

func copyUsedActions(src protocol.UsedActions) protocol.UsedActions {
	dst := newUsedActions()
	for k, v := range src.Vote {
		dst.Vote[k] = v
	}
	for k, v := range src.Love {
		dst.Love[k] = v
	}
	for k, v := range src.Hate {
		dst.Hate[k] = v
	}
	for name, skills := range src.Skills {
		m := make(map[string]bool, len(skills))
		for k, v := range skills {
			m[k] = v
		}
		dst.Skills[name] = m
	}
	return dst
}
