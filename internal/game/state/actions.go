package state

import (
	"fmt"
	"log"
	"time"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/action"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/roles"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
)

// gameAction 的动作名
const (
	ActionSwitchDayNight     = "switchDayNight"
	ActionUpdateCount        = "updateCount"
	ActionVote               = "vote"
	ActionUseSkill           = "useSkill"
	ActionResetVote          = "resetVote"
	ActionResetLoveHateCount = "resetLoveHateCount"
	ActionRestartGame        = "restartGame"
	ActionTakeLoveHate       = "takeLoveHateAction"
)

// 技能 ID
const (
	SkillMolest          = "molest"
	SkillMislead         = action.SkillMislead
	SkillProtectingParty = action.SkillProtectingParty
	SkillFindAbby        = "findabby"
	SkillTheChosenOne    = "thechosenone"
)

// skillRoles 技能资格表：技能 → 必须持有的角色
var skillRoles = map[string]roles.Role{
	SkillMolest:          roles.RoleAbby,
	SkillMislead:         roles.RoleWind,
	SkillProtectingParty: roles.RoleKennedi,
	SkillFindAbby:        roles.RoleMichael,
	SkillTheChosenOne:    roles.RoleKer,
}

// HandleGameAction 统一游戏操作入口。
// 除 vote / useSkill 外都要求操作者是房主；越权和重放一律静默忽略，
// 不向不合格的操作者泄露任何状态。
func (g *Game) HandleGameAction(actor, actionName string, data protocol.ActionData) {
	hostOnly := map[string]bool{
		ActionSwitchDayNight:     true,
		ActionUpdateCount:        true,
		ActionResetVote:          true,
		ActionResetLoveHateCount: true,
		ActionRestartGame:        true,
		ActionTakeLoveHate:       true,
	}
	if hostOnly[actionName] && actor != g.hostName {
		return
	}

	switch actionName {
	case ActionSwitchDayNight:
		g.switchDayNight(data.IsDay)
	case ActionUpdateCount:
		g.updateCount(data.CountType, data.Delta)
	case ActionVote:
		g.Vote(actor)
	case ActionUseSkill:
		g.UseSkill(actor, data.Skill, data.Target)
	case ActionResetVote:
		g.resetVote()
	case ActionResetLoveHateCount:
		g.resetLoveHateCount()
	case ActionRestartGame:
		g.restartGame()
	case ActionTakeLoveHate:
		g.StartLoveHate()
	default:
		log.Printf("⚠️ 房间 %s 未知的游戏操作: %s (来自 %s)", g.roomID, actionName, actor)
	}
}

// switchDayNight 切换昼夜
func (g *Game) switchDayNight(isDay bool) {
	g.mu.Lock()
	g.isDay = isDay
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
}

// updateCount 调整计数器，任何路径都不会低于 0
func (g *Game) updateCount(countType string, delta int) {
	g.mu.Lock()

	var target *int
	switch countType {
	case "party":
		target = &g.partyCount
	case "scandal":
		target = &g.scandalScore
	case "closeKnot":
		target = &g.closeKnotScore
	case "vote":
		target = &g.voteCount
	default:
		g.mu.Unlock()
		return
	}

	*target += delta
	if *target < 0 {
		*target = 0
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
}

// Vote 玩家投票，每个清零周期内只计一次
func (g *Game) Vote(actor string) {
	g.mu.Lock()
	if !g.isSeatedLocked(actor) || g.used.Vote[actor] {
		g.mu.Unlock()
		return
	}
	g.used.Vote[actor] = true
	g.voteCount++
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
}

// UseSkill 使用技能。资格不符或已消耗的技能静默忽略；
// mislead / protectingparty 同时通报给进行中的行动轮（行动轮自行记账，不看台账）。
func (g *Game) UseSkill(actor, skill, target string) {
	requiredRole, known := skillRoles[skill]
	if !known {
		return
	}

	g.mu.Lock()

	player := g.findPlayerLocked(actor)
	if player == nil || player.Role != string(requiredRole) {
		g.mu.Unlock()
		return
	}
	if skill == SkillMolest && g.isDay {
		g.mu.Unlock()
		return
	}
	// 查验目标必须在座，点了不存在的名字不消耗技能也不给结论
	if skill == SkillFindAbby && g.findPlayerLocked(target) == nil {
		g.mu.Unlock()
		return
	}

	// 行动轮的即时记账独立于永久台账
	phase := g.phase
	if phase != nil && (skill == SkillMislead || skill == SkillProtectingParty) {
		phase.UseSkill(skill)
	}

	if g.used.Skills[actor][skill] {
		g.mu.Unlock()
		return
	}
	if g.used.Skills[actor] == nil {
		g.used.Skills[actor] = make(map[string]bool)
	}
	g.used.Skills[actor][skill] = true

	var private *protocol.UINotice
	switch skill {
	case SkillMolest:
		g.scandalScore++
		g.noticeLocked("夜色中似乎发生了些什么……", g.cfg.NoticeTTL)
	case SkillFindAbby:
		verdict := fmt.Sprintf("%s 不是 Abby。", target)
		if t := g.findPlayerLocked(target); t != nil && t.Role == string(roles.RoleAbby) {
			verdict = fmt.Sprintf("%s 就是 Abby！", target)
		}
		private = &protocol.UINotice{
			Text:      verdict,
			ExpiresAt: time.Now().Add(g.cfg.NoticeTTL).UnixMilli(),
		}
	case SkillTheChosenOne:
		// 天选者的一票按两票计
		g.voteCount += 2
		g.used.Vote[actor] = true
		g.noticeLocked("天选者已经做出了选择", g.cfg.NoticeTTL)
	}

	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
	if private != nil {
		g.out.SendToPlayer(actor, codec.MustNewMessage(protocol.MsgUIMessage, private))
	}
}

// resetVote 清空投票台账
func (g *Game) resetVote() {
	g.mu.Lock()
	g.used.Vote = make(map[string]bool)
	notice := g.noticeLocked("投票已重置，可以重新投票", g.cfg.NoticeTTL)
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
	g.out.Broadcast(codec.MustNewMessage(protocol.MsgUIMessage, notice))
}

// resetLoveHateCount 清空 love/hate 计数和台账
func (g *Game) resetLoveHateCount() {
	g.mu.Lock()
	g.used.Love = make(map[string]bool)
	g.used.Hate = make(map[string]bool)
	g.loveCount = 0
	g.hateCount = 0
	notice := g.noticeLocked("love/hate 已清零", g.cfg.NoticeTTL)
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
	g.out.Broadcast(codec.MustNewMessage(protocol.MsgUIMessage, notice))
}

// restartGame 广播预告，延迟后整体重建游戏状态
func (g *Game) restartGame() {
	g.mu.Lock()

	delaySec := int(g.cfg.RestartDelay / time.Second)
	notice := g.noticeLocked(fmt.Sprintf("游戏将在 %d 秒后重新开始", delaySec), g.cfg.RestartDelay)

	g.restartGen++
	gen := g.restartGen
	if g.restartTimer != nil {
		g.restartTimer.Stop()
	}
	g.restartTimer = time.AfterFunc(g.cfg.RestartDelay, func() {
		g.finishRestart(gen)
	})
	g.mu.Unlock()

	g.out.Broadcast(codec.MustNewMessage(protocol.MsgUIMessage, notice))
	log.Printf("🔄 房间 %s 即将重开", g.roomID)
}

// finishRestart 重开计时器到期。代数不符说明已被后来的转变取代，直接放弃。
func (g *Game) finishRestart(gen int) {
	g.mu.Lock()
	if gen != g.restartGen {
		g.mu.Unlock()
		return
	}
	g.resetLocked()
	rolesByName := make(map[string]string, len(g.players))
	for _, p := range g.players {
		rolesByName[p.Name] = p.Role
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	// 洗出的新角色推回房间座位，后续的名单广播才不会带旧角色
	if rs, ok := g.out.(roleSyncer); ok {
		rs.SyncRoles(rolesByName)
	}
	g.persist(snap)
	g.out.Broadcast(codec.MustNewMessage(protocol.MsgInitialGameState, snap))
	log.Printf("🔄 房间 %s 已重开（夜晚开局）", g.roomID)
}

// StartLoveHate 开启一轮 love/hate 行动。已有行动轮进行中时忽略。
func (g *Game) StartLoveHate() {
	g.mu.Lock()
	if g.phase != nil && g.phase.Active() {
		g.mu.Unlock()
		return
	}

	window := g.cfg.ActionWindow
	notice := g.noticeLocked("请选择 love 或 hate！", window)

	g.phase = action.Start(window, action.Callbacks{
		OnSkillWindow: func() { g.onSkillWindow() },
		OnResolve:     func(love, hate int) { g.onLoveHateResolved(love, hate) },
	})
	g.mu.Unlock()

	g.out.Broadcast(codec.MustNewMessage(protocol.MsgUIMessage, notice))
	log.Printf("💘 房间 %s 开启 love/hate 行动轮", g.roomID)
}

// HandleLoveHate 玩家表态。台账只在行动轮确实接受后落账。
func (g *Game) HandleLoveHate(actor string, kind string) {
	var k action.Kind
	switch kind {
	case "love":
		k = action.KindLove
	case "hate":
		k = action.KindHate
	default:
		return
	}

	g.mu.Lock()
	phase := g.phase
	seated := g.isSeatedLocked(actor)
	g.mu.Unlock()

	if phase == nil || !seated {
		return
	}
	if !phase.Declare(actor, k) {
		return
	}

	g.mu.Lock()
	if k == action.KindLove {
		g.used.Love[actor] = true
	} else {
		g.used.Hate[actor] = true
	}
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
}

// onSkillWindow 进入技能窗口的通知
func (g *Game) onSkillWindow() {
	g.mu.Lock()
	notice := g.noticeLocked("技能窗口已开启", g.cfg.ActionWindow)
	g.mu.Unlock()

	g.out.Broadcast(codec.MustNewMessage(protocol.MsgUIMessage, notice))
}

// onLoveHateResolved 行动轮结算，最终计数写入状态并整体广播
func (g *Game) onLoveHateResolved(love, hate int) {
	g.mu.Lock()
	g.loveCount = love
	g.hateCount = hate
	g.phase = nil
	snap := g.snapshotLocked()
	g.mu.Unlock()

	g.persistAndBroadcast(snap)
	log.Printf("💘 房间 %s 行动轮结算: love=%d hate=%d", g.roomID, love, hate)
}

// findPlayerLocked 按名字查座位，调用方需持有锁
func (g *Game) findPlayerLocked(name string) *protocol.PlayerInfo {
	for i := range g.players {
		if g.players[i].Name == name {
			return &g.players[i]
		}
	}
	return nil
}

// isSeatedLocked 判断玩家是否在座
func (g *Game) isSeatedLocked(name string) bool {
	return g.findPlayerLocked(name) != nil
}
