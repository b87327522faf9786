package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/roles"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
)

// fakeOut 记录广播与定向消息的 Broadcaster
type fakeOut struct {
	mu         sync.Mutex
	broadcasts []*protocol.Message
	direct     map[string][]*protocol.Message
}

func newFakeOut() *fakeOut {
	return &fakeOut{direct: make(map[string][]*protocol.Message)}
}

func (f *fakeOut) Broadcast(msg *protocol.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, msg)
}

func (f *fakeOut) SendToPlayer(name string, msg *protocol.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct[name] = append(f.direct[name], msg)
	return true
}

func (f *fakeOut) lastSnapshot(t *testing.T) *protocol.GameStateSnapshot {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.broadcasts) - 1; i >= 0; i-- {
		msg := f.broadcasts[i]
		if msg.Type == protocol.MsgGameStateUpdate || msg.Type == protocol.MsgInitialGameState {
			var snap protocol.GameStateSnapshot
			require.NoError(t, json.Unmarshal(msg.Payload, &snap))
			return &snap
		}
	}
	t.Fatal("没有收到状态快照广播")
	return nil
}

func (f *fakeOut) directTo(name string) []*protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*protocol.Message(nil), f.direct[name]...)
}

var testRoles = []roles.Role{roles.RoleAbby, roles.RoleWind, roles.RoleKennedi, roles.RoleMichael, roles.RoleKer}

// newTestGame 固定 5 人局：P0=Abby P1=Wind P2=Kennedi P3=Michael P4=Ker，房主 P0
func newTestGame(cfg Config) (*Game, *fakeOut) {
	out := newFakeOut()
	seats := make([]Seat, 5)
	for i := range seats {
		seats[i] = Seat{Name: fmt.Sprintf("P%d", i), Position: i}
	}
	g := NewGame("room1", "P0", seats, testRoles, cfg, nil, out)
	return g, out
}

func fastConfig() Config {
	return Config{
		ActionWindow: 40 * time.Millisecond,
		RestartDelay: 30 * time.Millisecond,
		NoticeTTL:    time.Second,
	}
}

func TestHostOnlyActionsIgnoreOtherPlayers(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.HandleGameAction("P1", ActionSwitchDayNight, protocol.ActionData{IsDay: false})
	g.HandleGameAction("P1", ActionUpdateCount, protocol.ActionData{CountType: "party", Delta: 3})
	assert.Empty(t, out.broadcasts, "越权操作不应产生任何广播")

	g.HandleGameAction("P0", ActionSwitchDayNight, protocol.ActionData{IsDay: false})
	snap := out.lastSnapshot(t)
	assert.False(t, snap.IsDay)
}

func TestUpdateCountClampsAtZero(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "party", Delta: 2})
	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "party", Delta: -5})
	snap := out.lastSnapshot(t)
	assert.Equal(t, 0, snap.PartyCount)

	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "scandal", Delta: 1})
	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "closeKnot", Delta: 2})
	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "vote", Delta: 3})
	snap = out.lastSnapshot(t)
	assert.Equal(t, 1, snap.ScandalScore)
	assert.Equal(t, 2, snap.CloseKnotScore)
	assert.Equal(t, 3, snap.VoteCount)

	before := len(out.broadcasts)
	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "bogus", Delta: 1})
	assert.Len(t, out.broadcasts, before, "未知计数器不应广播")
}

func TestVoteCountsOncePerPlayerUntilReset(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.HandleGameAction("P1", ActionVote, protocol.ActionData{})
	g.HandleGameAction("P1", ActionVote, protocol.ActionData{})
	g.HandleGameAction("P2", ActionVote, protocol.ActionData{})
	g.HandleGameAction("Ghost", ActionVote, protocol.ActionData{})

	snap := out.lastSnapshot(t)
	assert.Equal(t, 2, snap.VoteCount)
	assert.True(t, snap.UsedActions.Vote["P1"])
	assert.True(t, snap.UsedActions.Vote["P2"])

	g.HandleGameAction("P0", ActionResetVote, protocol.ActionData{})
	g.HandleGameAction("P1", ActionVote, protocol.ActionData{})
	snap = out.lastSnapshot(t)
	assert.Equal(t, 3, snap.VoteCount, "重置后可以再投")
}

func TestUseSkillRequiresMatchingRole(t *testing.T) {
	g, out := newTestGame(fastConfig())

	// P1 是 Wind，不能用 Kennedi 的技能
	g.HandleGameAction("P1", ActionUseSkill, protocol.ActionData{Skill: SkillProtectingParty})
	assert.Empty(t, out.broadcasts)

	// 未知技能静默忽略
	g.HandleGameAction("P1", ActionUseSkill, protocol.ActionData{Skill: "fly"})
	assert.Empty(t, out.broadcasts)
}

func TestMolestOnlyAtNightAndOnce(t *testing.T) {
	g, out := newTestGame(fastConfig())

	// 白天不可用
	g.HandleGameAction("P0", ActionUseSkill, protocol.ActionData{Skill: SkillMolest})
	assert.Empty(t, out.broadcasts)

	g.HandleGameAction("P0", ActionSwitchDayNight, protocol.ActionData{IsDay: false})
	g.HandleGameAction("P0", ActionUseSkill, protocol.ActionData{Skill: SkillMolest})
	snap := out.lastSnapshot(t)
	assert.Equal(t, 1, snap.ScandalScore)
	assert.True(t, snap.UsedActions.Skills["P0"][SkillMolest])
	require.NotNil(t, snap.UIMessage)

	// 重放不再生效
	g.HandleGameAction("P0", ActionUseSkill, protocol.ActionData{Skill: SkillMolest})
	snap = out.lastSnapshot(t)
	assert.Equal(t, 1, snap.ScandalScore)
}

func TestFindAbbyDeliversPrivateVerdict(t *testing.T) {
	g, out := newTestGame(fastConfig())

	// 查不在座的名字：不出结论、不广播、不消耗技能
	g.HandleGameAction("P3", ActionUseSkill, protocol.ActionData{Skill: SkillFindAbby, Target: "Ghost"})
	assert.Empty(t, out.directTo("P3"))
	assert.Empty(t, out.broadcasts)

	// P3 是 Michael，P0 是 Abby
	g.HandleGameAction("P3", ActionUseSkill, protocol.ActionData{Skill: SkillFindAbby, Target: "P0"})

	msgs := out.directTo("P3")
	require.Len(t, msgs, 1)
	assert.Equal(t, protocol.MsgUIMessage, msgs[0].Type)
	var notice protocol.UINotice
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &notice))
	assert.Contains(t, notice.Text, "就是 Abby")

	// 结论只发给施放者
	assert.Empty(t, out.directTo("P0"))
	assert.Empty(t, out.directTo("P1"))
}

func TestTheChosenOneDoubleVoteConsumesBallot(t *testing.T) {
	g, out := newTestGame(fastConfig())

	// P4 是 Ker
	g.HandleGameAction("P4", ActionUseSkill, protocol.ActionData{Skill: SkillTheChosenOne})
	snap := out.lastSnapshot(t)
	assert.Equal(t, 2, snap.VoteCount)
	assert.True(t, snap.UsedActions.Vote["P4"])

	// 本周期内不能再普通投票
	g.HandleGameAction("P4", ActionVote, protocol.ActionData{})
	snap = out.lastSnapshot(t)
	assert.Equal(t, 2, snap.VoteCount)
}

func TestRestartGameRebuildsStateAfterDelay(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.HandleGameAction("P0", ActionUpdateCount, protocol.ActionData{CountType: "party", Delta: 3})
	g.HandleGameAction("P1", ActionVote, protocol.ActionData{})
	g.HandleGameAction("P0", ActionRestartGame, protocol.ActionData{})

	require.Eventually(t, func() bool {
		out.mu.Lock()
		defer out.mu.Unlock()
		for _, msg := range out.broadcasts {
			if msg.Type == protocol.MsgInitialGameState {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	snap := out.lastSnapshot(t)
	assert.False(t, snap.IsDay, "重开后从夜晚开始")
	assert.Equal(t, 0, snap.PartyCount)
	assert.Equal(t, 0, snap.VoteCount)
	assert.Empty(t, snap.UsedActions.Vote)
	assert.Len(t, snap.Roles, 5, "重开后重新分配同样数量的角色")
}

func TestLoveHateRoundResolves(t *testing.T) {
	g, _ := newTestGame(fastConfig())

	g.HandleGameAction("P0", ActionTakeLoveHate, protocol.ActionData{})
	g.HandleLoveHate("P1", "love")
	g.HandleLoveHate("P2", "love")
	g.HandleLoveHate("P3", "hate")

	require.Eventually(t, func() bool {
		snap := g.Snapshot()
		return snap.LoveCount+snap.HateCount > 0
	}, time.Second, 5*time.Millisecond)

	snap := g.Snapshot()
	assert.Equal(t, 2, snap.LoveCount)
	assert.Equal(t, 1, snap.HateCount)
	assert.True(t, snap.UsedActions.Love["P1"])
	assert.True(t, snap.UsedActions.Hate["P3"])
}

func TestLoveHateIgnoredWithoutRound(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.HandleLoveHate("P1", "love")
	assert.Empty(t, out.broadcasts)

	g.HandleGameAction("P0", ActionTakeLoveHate, protocol.ActionData{})
	g.HandleLoveHate("Ghost", "love")

	snap := g.Snapshot()
	assert.Empty(t, snap.UsedActions.Love, "局外人的表态不落账")
}

func TestMisleadShiftsResolution(t *testing.T) {
	g, _ := newTestGame(fastConfig())

	g.HandleGameAction("P0", ActionTakeLoveHate, protocol.ActionData{})
	g.HandleLoveHate("P1", "love")
	g.HandleLoveHate("P2", "love")
	// 第一次表态后进入技能窗口，Wind 施放 mislead
	g.HandleGameAction("P1", ActionUseSkill, protocol.ActionData{Skill: SkillMislead})

	require.Eventually(t, func() bool {
		snap := g.Snapshot()
		return snap.LoveCount+snap.HateCount > 0
	}, time.Second, 5*time.Millisecond)

	snap := g.Snapshot()
	assert.Equal(t, 1, snap.LoveCount)
	assert.Equal(t, 1, snap.HateCount)
}

func TestSetConnectedAndPartyHostSync(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.SetConnected("P2", false)
	snap := out.lastSnapshot(t)
	for _, p := range snap.Players {
		if p.Name == "P2" {
			assert.False(t, p.Connected)
		}
	}

	g.SyncPartyHosts(map[string]bool{"P1": true})
	snap = out.lastSnapshot(t)
	for _, p := range snap.Players {
		assert.Equal(t, p.Name == "P1", p.IsPartyHost)
	}
}

func TestStopCancelsRestart(t *testing.T) {
	g, out := newTestGame(fastConfig())

	g.HandleGameAction("P0", ActionRestartGame, protocol.ActionData{})
	g.Stop()

	time.Sleep(80 * time.Millisecond)
	out.mu.Lock()
	defer out.mu.Unlock()
	for _, msg := range out.broadcasts {
		assert.NotEqual(t, protocol.MsgInitialGameState, msg.Type, "Stop 后不应再重开")
	}
}
