package voice

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/testutil"
)

// recordingNotifier 记录广播消息及其时间
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

type notifyEvent struct {
	roomID string
	msg    *protocol.Message
	at     time.Time
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, msg *protocol.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{roomID: roomID, msg: msg, at: time.Now()})
}

func (n *recordingNotifier) ofType(t protocol.MessageType) []notifyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifyEvent
	for _, e := range n.events {
		if e.msg.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func joinedName(t *testing.T, msg *protocol.Message) string {
	t.Helper()
	var p protocol.VoicePlayerJoinedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	return p.PlayerName
}

func TestJoinAdmitsInOrderWithSpacing(t *testing.T) {
	notifier := &recordingNotifier{}
	interval := 30 * time.Millisecond
	m := NewManager(notifier, interval)

	names := []string{"Alice", "Bob", "Carol"}
	for i, name := range names {
		m.Join("room1", testutil.NewSimpleClient(string(rune('a'+i)), name), name)
	}

	require.Eventually(t, func() bool {
		return len(notifier.ofType(protocol.MsgVoicePlayerJoined)) == 3
	}, time.Second, 5*time.Millisecond)

	events := notifier.ofType(protocol.MsgVoicePlayerJoined)
	for i, e := range events {
		assert.Equal(t, names[i], joinedName(t, e.msg))
	}
	// 相邻入场至少隔一个间隔（留一点调度余量）
	for i := 1; i < len(events); i++ {
		gap := events[i].at.Sub(events[i-1].at)
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond,
			"第 %d 与第 %d 名入场间隔过短: %v", i-1, i, gap)
	}
}

func TestRecreatedRoomKeepsSpacingAfterStaleWorker(t *testing.T) {
	notifier := &recordingNotifier{}
	interval := 60 * time.Millisecond
	m := NewManager(notifier, interval)

	// Alice 入场后立刻离开，语音记录被丢弃，但旧工作协程还在间隔睡眠中
	m.Join("room1", testutil.NewSimpleClient("a", "Alice"), "Alice")
	require.Eventually(t, func() bool {
		return len(notifier.ofType(protocol.MsgVoicePlayerJoined)) == 1
	}, time.Second, time.Millisecond)
	m.Leave("room1", "Alice")

	// 重建语音记录：Bob 立即放行，Carol 排队等下一个间隔
	m.Join("room1", testutil.NewSimpleClient("b", "Bob"), "Bob")
	m.Join("room1", testutil.NewSimpleClient("c", "Carol"), "Carol")

	require.Eventually(t, func() bool {
		return len(notifier.ofType(protocol.MsgVoicePlayerJoined)) == 3
	}, time.Second, 5*time.Millisecond)

	// 醒来的旧协程不得接手新记录的队列，Bob 与 Carol 之间的间隔必须保住
	events := notifier.ofType(protocol.MsgVoicePlayerJoined)
	assert.Equal(t, "Bob", joinedName(t, events[1].msg))
	assert.Equal(t, "Carol", joinedName(t, events[2].msg))
	gap := events[2].at.Sub(events[1].at)
	assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "入场间隔过短: %v", gap)
}

func TestJoinSendsParticipantListToNewcomer(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewManager(notifier, time.Millisecond)

	alice := testutil.NewSimpleClient("a", "Alice")
	bob := testutil.NewSimpleClient("b", "Bob")
	m.Join("room1", alice, "Alice")
	m.Join("room1", bob, "Bob")

	require.Eventually(t, func() bool {
		return len(bob.MessagesOfType(protocol.MsgVoiceJoined)) == 1
	}, time.Second, time.Millisecond)

	msgs := bob.MessagesOfType(protocol.MsgVoiceJoined)
	var p protocol.VoiceJoinedPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &p))
	assert.Equal(t, "room1", p.RoomID)
	require.Len(t, p.Participants, 2)
	// 新成员默认静音
	for _, info := range p.Participants {
		assert.True(t, info.Muted)
	}
}

func TestLeaveBroadcastsAndDiscardsEmptyRoom(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewManager(notifier, time.Millisecond)

	m.Join("room1", testutil.NewSimpleClient("a", "Alice"), "Alice")
	require.Eventually(t, func() bool {
		return len(m.Participants("room1")) == 1
	}, time.Second, time.Millisecond)

	m.Leave("room1", "Alice")

	assert.Empty(t, m.Participants("room1"))
	left := notifier.ofType(protocol.MsgVoicePlayerLeft)
	require.Len(t, left, 1)

	m.mu.Lock()
	_, exists := m.rooms["room1"]
	m.mu.Unlock()
	assert.False(t, exists, "空房间的语音记录应被丢弃")
}

func TestLeaveWhileQueuedIsSilent(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewManager(notifier, 50*time.Millisecond)

	m.Join("room1", testutil.NewSimpleClient("a", "Alice"), "Alice")
	m.Join("room1", testutil.NewSimpleClient("b", "Bob"), "Bob")
	// Bob 还在排队时就离开
	m.Leave("room1", "Bob")

	time.Sleep(150 * time.Millisecond)
	assert.Len(t, m.Participants("room1"), 1)
	assert.Empty(t, notifier.ofType(protocol.MsgVoicePlayerLeft))
}

func TestToggleMute(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewManager(notifier, time.Millisecond)

	m.Join("room1", testutil.NewSimpleClient("a", "Alice"), "Alice")
	require.Eventually(t, func() bool {
		return len(m.Participants("room1")) == 1
	}, time.Second, time.Millisecond)

	m.ToggleMute("room1", "Alice", false)

	list := m.Participants("room1")
	require.Len(t, list, 1)
	assert.False(t, list[0].Muted)

	events := notifier.ofType(protocol.MsgVoiceMuteChanged)
	require.Len(t, events, 1)
	var p protocol.VoiceMuteChangedPayload
	require.NoError(t, json.Unmarshal(events[0].msg.Payload, &p))
	assert.Equal(t, "Alice", p.PlayerName)
	assert.False(t, p.Muted)

	// 不在语音里的玩家切静音是静默空操作
	m.ToggleMute("room1", "Ghost", true)
	assert.Len(t, notifier.ofType(protocol.MsgVoiceMuteChanged), 1)
}

func TestRelayTargetsSinglePeer(t *testing.T) {
	notifier := &recordingNotifier{}
	m := NewManager(notifier, time.Millisecond)

	alice := testutil.NewSimpleClient("a", "Alice")
	bob := testutil.NewSimpleClient("b", "Bob")
	m.Join("room1", alice, "Alice")
	m.Join("room1", bob, "Bob")
	require.Eventually(t, func() bool {
		return len(m.Participants("room1")) == 2
	}, time.Second, time.Millisecond)

	m.Relay("room1", "Alice", "offer", "Bob", `{"sdp":"x"}`)

	msgs := bob.MessagesOfType(protocol.MsgVoiceSignal)
	require.Len(t, msgs, 1)
	var p protocol.VoiceSignalPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &p))
	assert.Equal(t, "Alice", p.From)
	assert.Equal(t, "offer", p.Kind)
	assert.Empty(t, alice.MessagesOfType(protocol.MsgVoiceSignal))

	// 目标不在语音里时丢弃
	m.Relay("room1", "Alice", "offer", "Ghost", "{}")
}
