package events

import (
	"log/slog"
	"time"

	"github.com/cyberahree/rockin/core/flags"
	"github.com/cyberahree/rockin/core/scene"
)

// SoundPlayer plays event sound effects. Implementations live with the host
// application; the engine never calls it directly.
type SoundPlayer interface {
	// Play plays a sound by relative asset path at the given volume
	// multiplier. onFinish may be nil.
	Play(relativePath string, volume float64, onFinish func())
}

// SpeechController queues speech-bubble text for the sprite.
type SpeechController interface {
	// Say queues text and returns how long the bubble will be displayed.
	Say(text string) time.Duration

	// QueueLen returns the number of queued speech entries.
	QueueLen() int

	// Active reports whether a bubble is currently displayed.
	Active() bool
}

// SceneStage exposes the decoration scene to events.
type SceneStage interface {
	Entities() []scene.Entity
	Entity(entityID string) (scene.Entity, bool)
	FindByName(name string) []scene.Entity
	NearestTo(p scene.Point, maxDistance float64) (scene.Entity, bool)
	Move(entityID string, position scene.Point)
	Remove(entityID string)
	Spawn(decorationName string, position scene.Point, transient bool) string
}

// SpriteControls exposes the few sprite operations events need.
type SpriteControls interface {
	// SetFeatures sets the face and eye sprites. locked suspends the
	// normal update loop while true.
	SetFeatures(face, eyes string, locked bool)

	// Centre returns the sprite's centre in global coordinates.
	Centre() scene.Point

	// Dragging reports whether the user is currently dragging the sprite.
	Dragging() bool
}

// Context is handed to an event for the duration of one run. It carries the
// flag registry plus capability-scoped handles to the external collaborators.
type Context struct {
	Sounds SoundPlayer
	Speech SpeechController
	Scene  SceneStage
	Sprite SpriteControls

	flags  *flags.Registry
	logger *slog.Logger
}

// NewContext builds a run context. Collaborator handles may be nil when the
// corresponding subsystem is absent (headless runs); events are expected to
// gate on what they need in CanRun.
func NewContext(registry *flags.Registry, sounds SoundPlayer, speech SpeechController, stage SceneStage, sprite SpriteControls, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Sounds: sounds,
		Speech: speech,
		Scene:  stage,
		Sprite: sprite,
		flags:  registry,
		logger: logger,
	}
}

// Lock disables the named interactability flags on behalf of owner and
// returns the releasable token.
func (c *Context) Lock(owner string, flagNames ...string) *flags.Token {
	return c.flags.Acquire(owner, flagNames...)
}

// Flags returns the shared flag registry, for read-only eligibility checks.
func (c *Context) Flags() *flags.Registry {
	return c.flags
}

// Logger returns the engine logger scoped to event runs.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Delay invokes fn after d on a timer goroutine. Events use this instead of
// sleeping so they never stall the cooperative loop.
func (c *Context) Delay(d time.Duration, fn func()) *time.Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, fn)
}
