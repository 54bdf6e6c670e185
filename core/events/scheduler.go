package events

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cyberahree/rockin/core/flags"
)

const (
	// minRearmDelay is the floor on every timer arm, preventing a tight
	// loop when configured intervals are degenerate.
	minRearmDelay = 250 * time.Millisecond

	// disabledPollInterval is how often the scheduler re-checks while
	// events are disabled, so toggling them on in config takes effect.
	disabledPollInterval = 10 * time.Second

	// watchdogFloor is the minimum watchdog duration for any run.
	watchdogFloor = 5 * time.Second
)

// Settings are the live-updatable scheduler knobs.
type Settings struct {
	// Enabled gates all autonomous and manual event starts. Disabling it
	// mid-run never kills the current run, only future starts.
	Enabled bool

	// StartupDelay is the delay before the first tick after Start,
	// letting the application settle before any autonomous behavior.
	StartupDelay time.Duration

	// IntervalMin and IntervalMax bound the uniform random delay between
	// steady-state ticks.
	IntervalMin time.Duration
	IntervalMax time.Duration

	// MaxEventDuration is the default watchdog ceiling for events that do
	// not override it.
	MaxEventDuration time.Duration
}

// DefaultSettings returns the stock scheduler settings.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		StartupDelay:     15 * time.Second,
		IntervalMin:      300 * time.Second,
		IntervalMax:      600 * time.Second,
		MaxEventDuration: 120 * time.Second,
	}
}

// clamped normalizes degenerate values rather than failing the scheduler.
func (s Settings) clamped() Settings {
	if s.StartupDelay < 0 {
		s.StartupDelay = 0
	}
	if s.IntervalMin < 0 {
		s.IntervalMin = 0
	}
	if s.IntervalMax < s.IntervalMin {
		s.IntervalMax = s.IntervalMin
	}
	if s.MaxEventDuration < 0 {
		s.MaxEventDuration = 0
	}
	return s
}

// Config configures a Scheduler.
type Config struct {
	// Flags is the shared interactability flag registry. Required.
	Flags *flags.Registry

	// Catalog is the fixed list of events available for selection.
	Catalog []Event

	// Settings are the initial scheduler settings. Zero value means
	// DefaultSettings.
	Settings Settings

	// Gate is the global predicate deciding whether any autonomous
	// behavior may start at all (not dragging, no blocking menu open,
	// sprite initialized). Nil means always allowed. A panic inside the
	// gate counts as "not allowed".
	Gate func() bool

	// OnEventStarted is invoked with (id, name) whenever a run starts,
	// for UI surfaces to react. Optional.
	OnEventStarted func(id, name string)

	// Collaborator handles passed through to events via the run context.
	Sounds SoundPlayer
	Speech SpeechController
	Scene  SceneStage
	Sprite SpriteControls

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Rand is the selection randomness source, injectable for
	// reproducible tests. Defaults to a time-seeded source.
	Rand *rand.Rand
}

type activeRun struct {
	eventID   string
	startedAt time.Time
	seq       uint64
	watchdog  *time.Timer
}

// Scheduler owns the single-active-event invariant. It drives a single-shot
// timer that is re-armed only after each firing completes, performs weighted
// random selection among eligible events, enforces per-event cooldowns, and
// runs a watchdog per active run so a misbehaving event can never leave the
// sprite permanently locked.
type Scheduler struct {
	flags          *flags.Registry
	catalog        []Event
	byID           map[string]Event
	gate           func() bool
	onEventStarted func(id, name string)
	sounds         SoundPlayer
	speech         SpeechController
	scene          SceneStage
	sprite         SpriteControls
	logger         *slog.Logger

	mu       sync.Mutex
	settings Settings
	rng      *rand.Rand
	running  bool
	timer    *time.Timer
	active   *activeRun
	lastRun  map[string]time.Time
	seq      uint64

	// minWatchdog is watchdogFloor, overridable in tests.
	minWatchdog time.Duration
}

// New creates a scheduler. It does not start ticking until Start is called.
func New(cfg Config) *Scheduler {
	if cfg.Flags == nil {
		cfg.Flags = flags.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Settings == (Settings{}) {
		cfg.Settings = DefaultSettings()
	}

	byID := make(map[string]Event, len(cfg.Catalog))
	for _, ev := range cfg.Catalog {
		byID[ev.Info().ID] = ev
	}

	return &Scheduler{
		flags:          cfg.Flags,
		catalog:        append([]Event(nil), cfg.Catalog...),
		byID:           byID,
		gate:           cfg.Gate,
		onEventStarted: cfg.OnEventStarted,
		sounds:         cfg.Sounds,
		speech:         cfg.Speech,
		scene:          cfg.Scene,
		sprite:         cfg.Sprite,
		logger:         cfg.Logger,
		settings:       cfg.Settings.clamped(),
		rng:            cfg.Rand,
		lastRun:        make(map[string]time.Time),
		minWatchdog:    watchdogFloor,
	}
}

// Start begins the scheduling loop. The first tick fires after the startup
// delay. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.scheduleNextLocked(true)
}

// Stop cancels the pending timer and force-finishes any active run,
// releasing every flag the run still held. Safe to call at any time,
// including mid-run, and safe to call twice.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.finishActiveLocked(true)
}

// Running reports whether the scheduling loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ActiveEvent returns the id of the currently running event, if any.
func (s *Scheduler) ActiveEvent() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return "", false
	}
	return s.active.eventID, true
}

// ApplySettings replaces the scheduler settings. Takes effect on the next
// scheduling decision; the current run and the already-armed timer are left
// alone.
func (s *Scheduler) ApplySettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.clamped()
}

// Settings returns a snapshot of the current settings.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Scheduler) scheduleNextLocked(initial bool) {
	if !s.running {
		return
	}

	var delay time.Duration
	switch {
	case !s.settings.Enabled:
		delay = disabledPollInterval
	case initial:
		delay = s.settings.StartupDelay
	default:
		delay = s.randomIntervalLocked()
	}
	if delay < minRearmDelay {
		delay = minRearmDelay
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, s.tick)
}

func (s *Scheduler) randomIntervalLocked() time.Duration {
	span := s.settings.IntervalMax - s.settings.IntervalMin
	delay := s.settings.IntervalMin
	if span > 0 {
		delay += time.Duration(s.rng.Int63n(int64(span) + 1))
	}
	return delay
}

// tick is the scheduler heartbeat, fired by the single-shot timer.
// Every exit path either starts a run or re-arms the timer; no failure
// propagates out.
func (s *Scheduler) tick() {
	s.mu.Lock()
	s.timer = nil

	if !s.running {
		s.mu.Unlock()
		return
	}
	if !s.settings.Enabled {
		s.scheduleNextLocked(false)
		s.mu.Unlock()
		return
	}
	if s.active != nil {
		// shouldn't happen under the single-shot timer discipline,
		// but keep it safe
		s.scheduleNextLocked(false)
		s.mu.Unlock()
		return
	}
	if !s.gateAllows() {
		s.scheduleNextLocked(false)
		s.mu.Unlock()
		return
	}

	ctx := s.newContextLocked()
	ev := s.pickWeightedLocked(ctx)
	if ev == nil {
		s.scheduleNextLocked(false)
		s.mu.Unlock()
		return
	}

	info, done := s.beginRunLocked(ev)
	s.mu.Unlock()

	s.invoke(ev, ctx, info, done)
}

// TriggerRandom manually triggers a weighted random pick from the same
// eligibility pool as the periodic tick, bypassing the timer. Returns
// whether a run actually started.
func (s *Scheduler) TriggerRandom() bool {
	s.mu.Lock()

	if !s.settings.Enabled || s.active != nil || !s.gateAllows() {
		s.mu.Unlock()
		return false
	}

	ctx := s.newContextLocked()
	ev := s.pickWeightedLocked(ctx)
	if ev == nil {
		s.mu.Unlock()
		return false
	}

	info, done := s.beginRunLocked(ev)
	s.mu.Unlock()

	s.invoke(ev, ctx, info, done)
	return true
}

// Trigger manually starts the event with the given id. The event must pass
// the same eligibility rules as automatic selection except its weight, which
// is ignored, so weight-zero events remain manually triggerable. Returns
// whether a run actually started.
func (s *Scheduler) Trigger(id string) bool {
	s.mu.Lock()

	if !s.settings.Enabled || s.active != nil || !s.gateAllows() {
		s.mu.Unlock()
		return false
	}

	ev, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}

	info := ev.Info()
	if !info.Enabled {
		s.mu.Unlock()
		return false
	}
	if s.cooldownActiveLocked(info, time.Now()) {
		s.mu.Unlock()
		return false
	}

	ctx := s.newContextLocked()
	if !s.eventCanRun(ev, ctx) {
		s.mu.Unlock()
		return false
	}

	info, done := s.beginRunLocked(ev)
	s.mu.Unlock()

	s.invoke(ev, ctx, info, done)
	return true
}

func (s *Scheduler) newContextLocked() *Context {
	return NewContext(s.flags, s.sounds, s.speech, s.scene, s.sprite, s.logger)
}

// gateAllows evaluates the global gate, treating a panic as a refusal.
func (s *Scheduler) gateAllows() (allowed bool) {
	if s.gate == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event gate panicked", "panic", r)
			allowed = false
		}
	}()
	return s.gate()
}

// eventCanRun evaluates an event's own gate, treating a panic as "not
// eligible" rather than propagating it.
func (s *Scheduler) eventCanRun(ev Event, ctx *Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("event canRun panicked", "event", ev.Info().ID, "panic", r)
			ok = false
		}
	}()
	return ev.CanRun(ctx)
}

func (s *Scheduler) cooldownActiveLocked(info Info, now time.Time) bool {
	if info.Cooldown <= 0 {
		return false
	}
	last, ok := s.lastRun[info.ID]
	return ok && now.Sub(last) < info.Cooldown
}

// pickWeightedLocked filters the catalog down to the eligible set and draws
// one event with probability proportional to its weight.
func (s *Scheduler) pickWeightedLocked(ctx *Context) Event {
	now := time.Now()

	var runnable []Event
	var weights []float64
	total := 0.0

	for _, ev := range s.catalog {
		info := ev.Info()

		if !info.Enabled {
			continue
		}
		if s.cooldownActiveLocked(info, now) {
			continue
		}
		if !s.eventCanRun(ev, ctx) {
			continue
		}
		if info.Weight <= 0 {
			continue
		}

		runnable = append(runnable, ev)
		weights = append(weights, info.Weight)
		total += info.Weight
	}

	s.logger.Debug("evaluated event pool", "runnable", len(runnable))

	if len(runnable) == 0 || total <= 0 {
		return nil
	}

	draw := s.rng.Float64() * total
	for i, ev := range runnable {
		draw -= weights[i]
		if draw < 0 {
			return ev
		}
	}
	return runnable[len(runnable)-1]
}

// beginRunLocked records the run: cooldown ledger entry (written at start so
// long runs still respect cooldown from start time), watchdog timer, and the
// active-run record enforcing the single-active invariant. It returns the
// event info and the once-guarded completion callback.
func (s *Scheduler) beginRunLocked(ev Event) (Info, func()) {
	info := ev.Info()
	now := time.Now()

	s.lastRun[info.ID] = now
	s.seq++
	seq := s.seq

	maxDuration := info.MaxDuration
	if maxDuration <= 0 {
		maxDuration = s.settings.MaxEventDuration
	}
	if maxDuration < s.minWatchdog {
		maxDuration = s.minWatchdog
	}

	s.active = &activeRun{
		eventID:   info.ID,
		startedAt: now,
		seq:       seq,
		watchdog: time.AfterFunc(maxDuration, func() {
			s.finish(seq, true)
		}),
	}

	var once sync.Once
	done := func() {
		once.Do(func() {
			s.finish(seq, false)
		})
	}
	return info, done
}

// invoke hands the run to the event outside the scheduler lock. A panic in
// Run is logged and treated as an immediate finish; nothing propagates.
func (s *Scheduler) invoke(ev Event, ctx *Context, info Info, done func()) {
	s.notifyStarted(info)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event run panicked", "event", info.ID, "panic", r)
			done()
		}
	}()

	s.logger.Debug("starting event", "event", info.ID)
	ev.Run(ctx, done)
}

func (s *Scheduler) notifyStarted(info Info) {
	if s.onEventStarted == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event start hook panicked", "event", info.ID, "panic", r)
		}
	}()
	s.onEventStarted(info.ID, info.Name)
}

// finish completes the run identified by seq. The sequence check defuses a
// stale watchdog or a late completion callback racing a newer run.
func (s *Scheduler) finish(seq uint64, forced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.seq != seq {
		return
	}
	s.finishActiveLocked(forced)
}

// finishActiveLocked stops the watchdog, force-releases any flags still held
// under the event's id, clears the active record, and re-arms the timer.
func (s *Scheduler) finishActiveLocked(forced bool) {
	if s.active == nil {
		return
	}

	if s.active.watchdog != nil {
		s.active.watchdog.Stop()
	}
	s.flags.ClearOwner(s.active.eventID)

	if forced {
		s.logger.Debug("forcibly finished event", "event", s.active.eventID)
	} else {
		s.logger.Debug("finished event", "event", s.active.eventID)
	}

	s.active = nil
	s.scheduleNextLocked(false)
}
