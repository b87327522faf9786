package action

import (
	"sync"
	"time"
)

// Kind 表态类型
type Kind string

const (
	KindLove Kind = "love"
	KindHate Kind = "hate"
)

// 可影响结算的两个技能
const (
	SkillMislead         = "mislead"         // Wind：将一票 love 转为 hate
	SkillProtectingParty = "protectingparty" // Kennedi：将全部 hate 转为 love
)

// 阶段状态
const (
	phaseDone   = 0 // 已结算或被取消
	phaseOpen   = 1 // 表态窗口
	phaseSkills = 2 // 技能窗口
)

// Callbacks 阶段推进时的外部回调，均在锁外调用
type Callbacks struct {
	OnSkillWindow func()               // 进入技能窗口
	OnResolve     func(love, hate int) // 结算完成
}

// Phase 一轮 love/hate 行动的定时状态机。
// 表态窗口内第一条表态立即推进到技能窗口；两个窗口都有超时强制推进。
type Phase struct {
	window time.Duration
	cb     Callbacks

	mu          sync.Mutex
	state       int
	gen         int // 代数守卫，过期的计时器回调据此放弃执行
	love        map[string]bool
	hate        map[string]bool
	windUsed    bool
	kennediUsed bool
	timer       *time.Timer
}

// Start 开启一轮行动，进入表态窗口并武装强制推进计时器
func Start(window time.Duration, cb Callbacks) *Phase {
	p := &Phase{
		window: window,
		cb:     cb,
		state:  phaseOpen,
		love:   make(map[string]bool),
		hate:   make(map[string]bool),
	}

	p.mu.Lock()
	p.armTimerLocked(p.advanceFromTimer)
	p.mu.Unlock()

	return p
}

// Declare 记录一名玩家的表态。同一轮内每人至多一票（love 与 hate 互斥），
// 重复表态被忽略。返回是否被记录。
func (p *Phase) Declare(player string, kind Kind) bool {
	p.mu.Lock()

	if p.state == phaseDone {
		p.mu.Unlock()
		return false
	}
	if p.love[player] || p.hate[player] {
		p.mu.Unlock()
		return false
	}

	switch kind {
	case KindLove:
		p.love[player] = true
	case KindHate:
		p.hate[player] = true
	default:
		p.mu.Unlock()
		return false
	}

	// 表态窗口内的第一条表态立即推进到技能窗口
	advanced := false
	if p.state == phaseOpen {
		p.advanceLocked()
		advanced = true
	}
	p.mu.Unlock()

	if advanced && p.cb.OnSkillWindow != nil {
		p.cb.OnSkillWindow()
	}
	return true
}

// UseSkill 在技能窗口内登记结算技能。这里只记录本轮的布尔标记，
// 与全局的技能消耗台账相互独立。返回是否被接受。
func (p *Phase) UseSkill(skill string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != phaseSkills {
		return false
	}

	switch skill {
	case SkillMislead:
		p.windUsed = true
	case SkillProtectingParty:
		p.kennediUsed = true
	default:
		return false
	}
	return true
}

// Stop 取消本轮行动，不触发结算
func (p *Phase) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

// Active 判断本轮行动是否仍在进行
func (p *Phase) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != phaseDone
}

// advanceFromTimer 表态窗口超时，强制推进到技能窗口
func (p *Phase) advanceFromTimer(gen int) {
	p.mu.Lock()
	if p.state != phaseOpen || p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.advanceLocked()
	p.mu.Unlock()

	if p.cb.OnSkillWindow != nil {
		p.cb.OnSkillWindow()
	}
}

// advanceLocked 推进到技能窗口并重新武装计时器
func (p *Phase) advanceLocked() {
	p.state = phaseSkills
	p.armTimerLocked(p.resolveFromTimer)
}

// resolveFromTimer 技能窗口超时，执行结算
func (p *Phase) resolveFromTimer(gen int) {
	p.mu.Lock()
	if p.state != phaseSkills || p.gen != gen {
		p.mu.Unlock()
		return
	}

	love, hate := Resolve(len(p.love), len(p.hate), p.windUsed, p.kennediUsed)
	p.finishLocked()
	p.mu.Unlock()

	if p.cb.OnResolve != nil {
		p.cb.OnResolve(love, hate)
	}
}

// armTimerLocked 取消旧计时器并武装新的，回调携带当前代数
func (p *Phase) armTimerLocked(fn func(gen int)) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(p.window, func() { fn(gen) })
}

// finishLocked 终止状态机并作废所有计时器
func (p *Phase) finishLocked() {
	p.state = phaseDone
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Resolve 结算 love/hate 计数，纯函数。
// 两个技能都用时 Wind 优先，且只转移一票；Kennedi 单独使用时 hate 全转 love。
// 任何路径都不会产生负数。
func Resolve(love, hate int, windUsed, kennediUsed bool) (int, int) {
	switch {
	case windUsed && kennediUsed:
		if love > 0 {
			love--
			hate++
		}
	case windUsed:
		if love > 0 {
			love--
			hate++
		}
	case kennediUsed:
		love += hate
		hate = 0
	}
	return love, hate
}
