package events

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cyberahree/rockin/core/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEvent is a configurable catalog event for scheduler tests.
type fakeEvent struct {
	info   Info
	canRun func(*Context) bool
	run    func(*Context, func())

	runs atomic.Int64
}

func (f *fakeEvent) Info() Info {
	return f.info
}

func (f *fakeEvent) CanRun(ctx *Context) bool {
	if f.canRun == nil {
		return true
	}
	return f.canRun(ctx)
}

func (f *fakeEvent) Run(ctx *Context, onFinished func()) {
	f.runs.Add(1)
	if f.run == nil {
		onFinished()
		return
	}
	f.run(ctx, onFinished)
}

func instantEvent(id string, weight float64, cooldown time.Duration) *fakeEvent {
	return &fakeEvent{
		info: Info{
			ID:       id,
			Name:     id,
			Enabled:  true,
			Weight:   weight,
			Cooldown: cooldown,
		},
	}
}

func newTestScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()

	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.Settings == (Settings{}) {
		cfg.Settings = Settings{
			Enabled:          true,
			StartupDelay:     0,
			IntervalMin:      0,
			IntervalMax:      0,
			MaxEventDuration: time.Second,
		}
	}

	s := New(cfg)
	t.Cleanup(s.Stop)
	return s
}

func TestTrigger_RunsEvent(t *testing.T) {
	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{Catalog: []Event{ev}})

	require.True(t, s.Trigger("a"))
	assert.Equal(t, int64(1), ev.runs.Load())

	_, active := s.ActiveEvent()
	assert.False(t, active, "instant event finished synchronously")
}

func TestTrigger_UnknownEvent(t *testing.T) {
	s := newTestScheduler(t, Config{})
	assert.False(t, s.Trigger("ghost"))
}

func TestSingleActiveInvariant(t *testing.T) {
	release := make(chan struct{})
	slow := &fakeEvent{
		info: Info{ID: "slow", Name: "slow", Enabled: true, Weight: 1},
		run: func(ctx *Context, done func()) {
			go func() {
				<-release
				done()
			}()
		},
	}
	other := instantEvent("other", 1, 0)
	s := newTestScheduler(t, Config{Catalog: []Event{slow, other}})

	require.True(t, s.Trigger("slow"))

	id, active := s.ActiveEvent()
	require.True(t, active)
	assert.Equal(t, "slow", id)

	assert.False(t, s.Trigger("other"), "manual trigger refused while a run is active")
	assert.False(t, s.TriggerRandom(), "random trigger refused while a run is active")
	assert.Equal(t, int64(0), other.runs.Load())

	close(release)
	waitUntil(t, func() bool {
		_, active := s.ActiveEvent()
		return !active
	})

	assert.True(t, s.Trigger("other"))
}

func TestWeightZero_ExcludedFromRandomButTriggerable(t *testing.T) {
	a := instantEvent("a", 1, 0)
	b := instantEvent("b", 0, 0)
	s := newTestScheduler(t, Config{Catalog: []Event{a, b}})

	for i := 0; i < 200; i++ {
		require.True(t, s.TriggerRandom())
	}
	assert.Equal(t, int64(200), a.runs.Load())
	assert.Equal(t, int64(0), b.runs.Load(), "weight zero is never auto-selected")

	assert.True(t, s.Trigger("b"), "weight zero remains manually triggerable")
	assert.Equal(t, int64(1), b.runs.Load())
}

func TestWeightedSelectionDistribution(t *testing.T) {
	light := instantEvent("light", 1, 0)
	heavy := instantEvent("heavy", 3, 0)
	s := newTestScheduler(t, Config{
		Catalog: []Event{light, heavy},
		Rand:    rand.New(rand.NewSource(42)),
	})

	const trials = 4000
	for i := 0; i < trials; i++ {
		require.True(t, s.TriggerRandom())
	}

	heavyShare := float64(heavy.runs.Load()) / float64(trials)
	assert.InDelta(t, 0.75, heavyShare, 0.05,
		"weight 3 event should win roughly three quarters of draws")
}

func TestCooldownEnforcement(t *testing.T) {
	ev := instantEvent("cooled", 1, 200*time.Millisecond)
	s := newTestScheduler(t, Config{Catalog: []Event{ev}})

	require.True(t, s.Trigger("cooled"))

	assert.False(t, s.TriggerRandom(), "on cooldown right after starting")
	assert.False(t, s.Trigger("cooled"), "manual trigger also honors cooldown")

	remaining, ok := s.RemainingCooldown("cooled")
	require.True(t, ok)
	assert.Greater(t, remaining, time.Duration(0))
	assert.NotEmpty(t, s.FriendlyCooldownText("cooled"))

	time.Sleep(250 * time.Millisecond)

	_, ok = s.RemainingCooldown("cooled")
	assert.False(t, ok, "cooldown elapsed")
	assert.True(t, s.Trigger("cooled"))
}

func TestCooldownLedger_WrittenAtStartNotFinish(t *testing.T) {
	release := make(chan struct{})
	ev := &fakeEvent{
		info: Info{ID: "long", Name: "long", Enabled: true, Weight: 1, Cooldown: time.Hour},
		run: func(ctx *Context, done func()) {
			go func() {
				<-release
				done()
			}()
		},
	}
	s := newTestScheduler(t, Config{Catalog: []Event{ev}})

	require.True(t, s.Trigger("long"))

	remaining, ok := s.RemainingCooldown("long")
	require.True(t, ok, "cooldown counts from run start, not completion")
	assert.Greater(t, remaining, 59*time.Minute)

	close(release)
}

func TestGlobalGate_BlocksWithoutLedgerWrites(t *testing.T) {
	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{
		Catalog: []Event{ev},
		Gate:    func() bool { return false },
	})

	assert.False(t, s.TriggerRandom())
	assert.False(t, s.Trigger("a"))
	assert.Equal(t, int64(0), ev.runs.Load())

	s.mu.Lock()
	ledgerLen := len(s.lastRun)
	s.mu.Unlock()
	assert.Zero(t, ledgerLen, "gate refusal must not touch the cooldown ledger")
}

func TestGlobalGate_PanicTreatedAsRefusal(t *testing.T) {
	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{
		Catalog: []Event{ev},
		Gate:    func() bool { panic("gate exploded") },
	})

	assert.NotPanics(t, func() {
		assert.False(t, s.TriggerRandom())
	})
}

func TestCanRunPanic_TreatedAsNotEligible(t *testing.T) {
	bad := &fakeEvent{
		info:   Info{ID: "bad", Name: "bad", Enabled: true, Weight: 1},
		canRun: func(*Context) bool { panic("canRun exploded") },
	}
	good := instantEvent("good", 1, 0)
	s := newTestScheduler(t, Config{Catalog: []Event{bad, good}})

	for i := 0; i < 50; i++ {
		require.True(t, s.TriggerRandom())
	}
	assert.Equal(t, int64(0), bad.runs.Load())
	assert.Equal(t, int64(50), good.runs.Load())
}

func TestRunPanic_ImmediateFinish(t *testing.T) {
	registry := flags.NewRegistry()
	ev := &fakeEvent{
		info: Info{ID: "boom", Name: "boom", Enabled: true, Weight: 1},
		run: func(ctx *Context, done func()) {
			ctx.Lock("boom", flags.Drag)
			panic("run exploded")
		},
	}
	s := newTestScheduler(t, Config{Flags: registry, Catalog: []Event{ev}})

	assert.NotPanics(t, func() {
		assert.True(t, s.Trigger("boom"))
	})

	_, active := s.ActiveEvent()
	assert.False(t, active)
	assert.True(t, registry.IsEnabled(flags.Drag), "locks force-released after panic")
}

func TestWatchdog_ForcedReleaseLiveness(t *testing.T) {
	registry := flags.NewRegistry()
	hung := &fakeEvent{
		info: Info{ID: "hung", Name: "hung", Enabled: true, Weight: 1},
		run: func(ctx *Context, done func()) {
			ctx.Lock("hung", flags.Drag, flags.Blink)
			// never calls done
		},
	}
	s := newTestScheduler(t, Config{
		Flags:   registry,
		Catalog: []Event{hung},
		Settings: Settings{
			Enabled:          true,
			MaxEventDuration: 50 * time.Millisecond,
		},
	})
	s.minWatchdog = 10 * time.Millisecond

	require.True(t, s.Trigger("hung"))
	require.True(t, registry.AnyDisabled(flags.Drag, flags.Blink))

	waitUntil(t, func() bool {
		_, active := s.ActiveEvent()
		return !active
	})

	assert.True(t, registry.IsEnabled(flags.Drag))
	assert.True(t, registry.IsEnabled(flags.Blink))
}

func TestWatchdog_StaleTimerDoesNotKillNextRun(t *testing.T) {
	hung := &fakeEvent{
		info: Info{ID: "hung", Name: "hung", Enabled: true, Weight: 1},
		run:  func(ctx *Context, done func()) {},
	}
	release := make(chan struct{})
	second := &fakeEvent{
		info: Info{ID: "second", Name: "second", Enabled: true, Weight: 1, MaxDuration: time.Hour},
		run: func(ctx *Context, done func()) {
			go func() {
				<-release
				done()
			}()
		},
	}
	s := newTestScheduler(t, Config{
		Catalog: []Event{hung, second},
		Settings: Settings{
			Enabled:          true,
			MaxEventDuration: 30 * time.Millisecond,
		},
	})
	s.minWatchdog = 10 * time.Millisecond

	require.True(t, s.Trigger("hung"))
	waitUntil(t, func() bool {
		_, active := s.ActiveEvent()
		return !active
	})

	require.True(t, s.Trigger("second"))
	time.Sleep(100 * time.Millisecond)

	id, active := s.ActiveEvent()
	require.True(t, active, "second run outlives the first run's watchdog window")
	assert.Equal(t, "second", id)

	close(release)
}

func TestDoneIdempotent(t *testing.T) {
	var captured func()
	ev := &fakeEvent{
		info: Info{ID: "a", Name: "a", Enabled: true, Weight: 1},
		run: func(ctx *Context, done func()) {
			captured = done
			done()
		},
	}
	b := instantEvent("b", 1, 0)
	s := newTestScheduler(t, Config{Catalog: []Event{ev, b}})

	require.True(t, s.Trigger("a"))
	require.True(t, s.Trigger("b"))

	// stale completion callback from the first run fires again; it must
	// be a no-op and must not disturb anything
	assert.NotPanics(t, captured)

	assert.True(t, s.Trigger("a"), "scheduler state intact after stale done")
}

func TestStop_ForcesFinishAndReleasesFlags(t *testing.T) {
	registry := flags.NewRegistry()
	hung := &fakeEvent{
		info: Info{ID: "petter", Name: "petter", Enabled: true, Weight: 1},
		run: func(ctx *Context, done func()) {
			ctx.Lock("petter", flags.Petting)
			// never calls done
		},
	}
	s := New(Config{Flags: registry, Catalog: []Event{hung}})

	s.Start()
	require.True(t, s.Trigger("petter"))
	require.False(t, registry.IsEnabled(flags.Petting))

	s.Stop()

	assert.True(t, registry.IsEnabled(flags.Petting))
	_, active := s.ActiveEvent()
	assert.False(t, active)
	assert.False(t, s.Running())

	s.mu.Lock()
	timerArmed := s.timer != nil
	s.mu.Unlock()
	assert.False(t, timerArmed, "no pending timer after stop")
}

func TestStop_Twice(t *testing.T) {
	s := New(Config{})
	s.Start()
	s.Stop()
	assert.NotPanics(t, s.Stop)
}

func TestPeriodicTick_RunsEvents(t *testing.T) {
	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{
		Catalog: []Event{ev},
		Settings: Settings{
			Enabled:          true,
			StartupDelay:     time.Millisecond,
			IntervalMin:      time.Millisecond,
			IntervalMax:      time.Millisecond,
			MaxEventDuration: time.Second,
		},
	})

	s.Start()

	// floor is 250ms per arm, so give a couple of cycles
	waitUntilWithin(t, 2*time.Second, func() bool {
		return ev.runs.Load() >= 2
	})
}

func TestDisabled_NoRunsButPollsForReenable(t *testing.T) {
	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{
		Catalog: []Event{ev},
		Settings: Settings{
			Enabled:          false,
			MaxEventDuration: time.Second,
		},
	})

	assert.False(t, s.TriggerRandom(), "disabled blocks manual triggers too")

	s.Start()
	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, ev.runs.Load())
}

func TestApplySettings_LiveAndClamped(t *testing.T) {
	s := newTestScheduler(t, Config{})

	s.ApplySettings(Settings{
		Enabled:          true,
		StartupDelay:     -time.Second,
		IntervalMin:      10 * time.Second,
		IntervalMax:      time.Second,
		MaxEventDuration: -time.Minute,
	})

	got := s.Settings()
	assert.Equal(t, time.Duration(0), got.StartupDelay)
	assert.Equal(t, 10*time.Second, got.IntervalMin)
	assert.Equal(t, 10*time.Second, got.IntervalMax, "max clamped up to min")
	assert.Equal(t, time.Duration(0), got.MaxEventDuration)
}

func TestDisableMidRun_DoesNotKillActiveRun(t *testing.T) {
	release := make(chan struct{})
	ev := &fakeEvent{
		info: Info{ID: "a", Name: "a", Enabled: true, Weight: 1},
		run: func(ctx *Context, done func()) {
			go func() {
				<-release
				done()
			}()
		},
	}
	s := newTestScheduler(t, Config{Catalog: []Event{ev}})

	require.True(t, s.Trigger("a"))

	settings := s.Settings()
	settings.Enabled = false
	s.ApplySettings(settings)

	id, active := s.ActiveEvent()
	require.True(t, active)
	assert.Equal(t, "a", id)

	close(release)
	waitUntil(t, func() bool {
		_, active := s.ActiveEvent()
		return !active
	})
}

func TestOnEventStarted_Hook(t *testing.T) {
	var mu sync.Mutex
	var startedIDs []string

	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{
		Catalog: []Event{ev},
		OnEventStarted: func(id, name string) {
			mu.Lock()
			startedIDs = append(startedIDs, id)
			mu.Unlock()
		},
	})

	require.True(t, s.Trigger("a"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a"}, startedIDs)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	waitUntilWithin(t, time.Second, cond)
}

func waitUntilWithin(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
