package action

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		love, hate  int
		wind        bool
		kennedi     bool
		wantLove    int
		wantHate    int
	}{
		{"no skills", 3, 1, false, false, 3, 1},
		{"wind shifts one vote", 3, 1, true, false, 2, 2},
		{"kennedi converts all hate", 0, 2, false, true, 2, 0},
		{"wind precedence when both used", 2, 1, true, true, 1, 2},
		{"wind with zero love is a no-op", 0, 3, true, false, 0, 3},
		{"both used with zero love", 0, 3, true, true, 0, 3},
		{"kennedi with zero hate", 4, 0, false, true, 4, 0},
		{"nobody declared", 0, 0, true, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			love, hate := Resolve(tt.love, tt.hate, tt.wind, tt.kennedi)
			assert.Equal(t, tt.wantLove, love)
			assert.Equal(t, tt.wantHate, hate)
			assert.GreaterOrEqual(t, love, 0)
			assert.GreaterOrEqual(t, hate, 0)
		})
	}
}

// resultRecorder collects phase callbacks for assertions.
type resultRecorder struct {
	mu          sync.Mutex
	skillWindow int
	resolved    bool
	love, hate  int
}

func (r *resultRecorder) callbacks() Callbacks {
	return Callbacks{
		OnSkillWindow: func() {
			r.mu.Lock()
			r.skillWindow++
			r.mu.Unlock()
		},
		OnResolve: func(love, hate int) {
			r.mu.Lock()
			r.resolved = true
			r.love, r.hate = love, hate
			r.mu.Unlock()
		},
	}
}

func (r *resultRecorder) snapshot() resultRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return resultRecorder{skillWindow: r.skillWindow, resolved: r.resolved, love: r.love, hate: r.hate}
}

func TestPhase_FirstDeclarationAdvancesWindow(t *testing.T) {
	t.Parallel()

	rec := &resultRecorder{}
	p := Start(50*time.Millisecond, rec.callbacks())
	defer p.Stop()

	require.True(t, p.Declare("Alice", KindLove))

	// Skill window opens immediately, well before the force-advance timer
	assert.Eventually(t, func() bool {
		return rec.snapshot().skillWindow == 1
	}, time.Second, 5*time.Millisecond)

	// Later declarations are recorded without advancing again
	require.True(t, p.Declare("Bob", KindHate))
	assert.Equal(t, 1, rec.snapshot().skillWindow)
}

func TestPhase_DuplicateDeclarationsIgnored(t *testing.T) {
	t.Parallel()

	rec := &resultRecorder{}
	p := Start(30*time.Millisecond, rec.callbacks())

	require.True(t, p.Declare("Alice", KindLove))
	assert.False(t, p.Declare("Alice", KindLove), "same vote replay")
	assert.False(t, p.Declare("Alice", KindHate), "love and hate are mutually exclusive")

	require.True(t, p.Declare("Bob", KindHate))

	assert.Eventually(t, func() bool {
		return rec.snapshot().resolved
	}, time.Second, 5*time.Millisecond)

	got := rec.snapshot()
	assert.Equal(t, 1, got.love)
	assert.Equal(t, 1, got.hate)
}

func TestPhase_ForceAdvanceWhenUntouched(t *testing.T) {
	t.Parallel()

	rec := &resultRecorder{}
	p := Start(20*time.Millisecond, rec.callbacks())
	defer p.Stop()

	// Nobody declares: window1 times out into the skill window, then resolves 0/0
	assert.Eventually(t, func() bool {
		return rec.snapshot().resolved
	}, time.Second, 5*time.Millisecond)

	got := rec.snapshot()
	assert.Equal(t, 1, got.skillWindow)
	assert.Equal(t, 0, got.love)
	assert.Equal(t, 0, got.hate)
	assert.False(t, p.Active())
}

func TestPhase_SkillsOnlyAcceptedInSkillWindow(t *testing.T) {
	t.Parallel()

	rec := &resultRecorder{}
	p := Start(50*time.Millisecond, rec.callbacks())

	// Still in the open window
	assert.False(t, p.UseSkill(SkillMislead))

	require.True(t, p.Declare("Alice", KindLove))
	require.True(t, p.Declare("Bob", KindLove))
	require.True(t, p.Declare("Carol", KindLove))
	require.True(t, p.Declare("Dave", KindHate))

	assert.True(t, p.UseSkill(SkillMislead))
	assert.False(t, p.UseSkill("unknown"))

	assert.Eventually(t, func() bool {
		return rec.snapshot().resolved
	}, time.Second, 5*time.Millisecond)

	// love=3, hate=1, wind used: one vote shifts
	got := rec.snapshot()
	assert.Equal(t, 2, got.love)
	assert.Equal(t, 2, got.hate)
}

func TestPhase_StopCancelsResolution(t *testing.T) {
	t.Parallel()

	rec := &resultRecorder{}
	p := Start(20*time.Millisecond, rec.callbacks())

	require.True(t, p.Declare("Alice", KindLove))
	p.Stop()

	assert.False(t, p.Active())
	assert.False(t, p.Declare("Bob", KindHate))

	// Give the cancelled timer a chance to misfire
	time.Sleep(60 * time.Millisecond)
	assert.False(t, rec.snapshot().resolved)
}
