package voice

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// Notifier 房间级广播出口
type Notifier interface {
	BroadcastToRoom(roomID string, msg *protocol.Message)
}

// Participant 语音参与者
type Participant struct {
	Client types.ClientInterface
	Name   string
	Muted  bool
}

// pending 排队等待入场的加入请求
type pending struct {
	client types.ClientInterface
	name   string
}

// voiceRoom 一个房间的语音状态
type voiceRoom struct {
	participants map[string]*Participant
	queue        []pending
	processing   bool // 同一房间只允许一个入场工作协程
}

// Manager 语音入场排队器。每个房间一条 FIFO 队列，由单个工作协程
// 顺序放行，相邻入场之间强制间隔，压平信令消息的突发。
type Manager struct {
	notifier Notifier
	interval time.Duration

	mu    sync.Mutex
	rooms map[string]*voiceRoom
}

// NewManager 创建语音管理器
func NewManager(notifier Notifier, interval time.Duration) *Manager {
	return &Manager{
		notifier: notifier,
		interval: interval,
		rooms:    make(map[string]*voiceRoom),
	}
}

// Join 玩家申请加入语音，进入该房间的入场队列
func (m *Manager) Join(roomID string, client types.ClientInterface, name string) {
	m.mu.Lock()
	vr := m.rooms[roomID]
	if vr == nil {
		vr = &voiceRoom{participants: make(map[string]*Participant)}
		m.rooms[roomID] = vr
	}
	vr.queue = append(vr.queue, pending{client: client, name: name})

	if !vr.processing {
		vr.processing = true
		go m.drain(roomID, vr)
	}
	m.mu.Unlock()
}

// drain 入场工作协程：每次放行队头一人，间隔固定时长。
// 房间记录被丢弃后重建时，旧协程凭 vr 指针识别出自己已被取代，直接退出。
func (m *Manager) drain(roomID string, vr *voiceRoom) {
	for {
		m.mu.Lock()
		if m.rooms[roomID] != vr {
			m.mu.Unlock()
			return
		}
		if len(vr.queue) == 0 {
			vr.processing = false
			m.mu.Unlock()
			return
		}

		next := vr.queue[0]
		vr.queue = vr.queue[1:]
		// 新成员默认静音入场
		vr.participants[next.name] = &Participant{Client: next.client, Name: next.name, Muted: true}
		list := participantListLocked(vr)
		m.mu.Unlock()

		next.client.SendMessage(codec.MustNewMessage(protocol.MsgVoiceJoined, protocol.VoiceJoinedPayload{
			RoomID:       roomID,
			Participants: list,
		}))
		m.notifier.BroadcastToRoom(roomID, codec.MustNewMessage(protocol.MsgVoicePlayerJoined, protocol.VoicePlayerJoinedPayload{
			PlayerName: next.name,
		}))
		log.Printf("🎙️ 玩家 %s 进入房间 %s 的语音", next.name, roomID)

		time.Sleep(m.interval)
	}
}

// Leave 玩家离开语音。参与者清空后整个语音记录随之丢弃。
func (m *Manager) Leave(roomID, name string) {
	m.mu.Lock()
	vr := m.rooms[roomID]
	if vr == nil {
		m.mu.Unlock()
		return
	}

	_, wasIn := vr.participants[name]
	delete(vr.participants, name)
	for i, p := range vr.queue {
		if p.name == name {
			vr.queue = append(vr.queue[:i], vr.queue[i+1:]...)
			break
		}
	}
	if len(vr.participants) == 0 && len(vr.queue) == 0 {
		delete(m.rooms, roomID)
		log.Printf("🎙️ 房间 %s 的语音已清空", roomID)
	}
	m.mu.Unlock()

	if wasIn {
		m.notifier.BroadcastToRoom(roomID, codec.MustNewMessage(protocol.MsgVoicePlayerLeft, protocol.VoicePlayerLeftPayload{
			PlayerName: name,
		}))
	}
}

// ToggleMute 切换静音状态并广播
func (m *Manager) ToggleMute(roomID, name string, muted bool) {
	m.mu.Lock()
	vr := m.rooms[roomID]
	if vr == nil {
		m.mu.Unlock()
		return
	}
	p, ok := vr.participants[name]
	if !ok {
		m.mu.Unlock()
		return
	}
	p.Muted = muted
	m.mu.Unlock()

	m.notifier.BroadcastToRoom(roomID, codec.MustNewMessage(protocol.MsgVoiceMuteChanged, protocol.VoiceMuteChangedPayload{
		PlayerName: name,
		Muted:      muted,
	}))
}

// Participants 返回房间当前的语音参与者列表
func (m *Manager) Participants(roomID string) []protocol.VoiceParticipantInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	vr := m.rooms[roomID]
	if vr == nil {
		return nil
	}
	return participantListLocked(vr)
}

// Relay 点对点转发 WebRTC 信令（offer / answer / iceCandidate）
func (m *Manager) Relay(roomID, from, kind, target, data string) {
	m.mu.Lock()
	var client types.ClientInterface
	if vr := m.rooms[roomID]; vr != nil {
		if p, ok := vr.participants[target]; ok {
			client = p.Client
		}
	}
	m.mu.Unlock()

	if client == nil {
		return
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgVoiceSignal, protocol.VoiceSignalPayload{
		From:   from,
		Target: target,
		Kind:   kind,
		Data:   data,
	}))
}

// HandleDisconnect 传输层断开等同于离开语音
func (m *Manager) HandleDisconnect(roomID, name string) {
	m.Leave(roomID, name)
}

// participantListLocked 构建参与者列表（按名字排序，输出稳定）
func participantListLocked(vr *voiceRoom) []protocol.VoiceParticipantInfo {
	list := make([]protocol.VoiceParticipantInfo, 0, len(vr.participants))
	for _, p := range vr.participants {
		list = append(list, protocol.VoiceParticipantInfo{
			PlayerName: p.Name,
			Muted:      p.Muted,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PlayerName < list[j].PlayerName })
	return list
}
