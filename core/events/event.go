// Package events implements the autonomous event engine for the sprite:
// the behavior contract every event module satisfies, the capability-aware
// run context handed to events, and the scheduler that decides which event
// runs next while guaranteeing at most one run is ever active.
package events

import "time"

// Info holds the static metadata of an event.
type Info struct {
	// ID is the unique event identifier, also used as the lock owner id
	// for flags the event acquires.
	ID string

	// Name is the display name shown in UI surfaces.
	Name string

	// Enabled excludes the event from selection entirely when false.
	Enabled bool

	// Weight is the relative selection weight. Zero or negative weight
	// excludes the event from random selection but not from a manual
	// trigger by id.
	Weight float64

	// Cooldown is the minimum elapsed time since the event last started
	// before it becomes eligible again. Zero means no cooldown.
	Cooldown time.Duration

	// MaxDuration overrides the scheduler's default watchdog ceiling for
	// this event. Zero means use the scheduler default.
	MaxDuration time.Duration
}

// Event is the contract a pluggable sprite event implements.
//
// CanRun must be side-effect free; it is evaluated fresh on every scheduling
// attempt and a panic is treated the same as returning false.
//
// Run must eventually invoke onFinished exactly once, even on internal
// failure, and should release any flag tokens it acquired before (or as part
// of) calling it. The scheduler force-releases leftover locks as a safety
// net, not as a substitute. Run must not block the calling goroutine on slow
// work such as network fetches; do that on a goroutine and call onFinished
// when done.
type Event interface {
	Info() Info
	CanRun(ctx *Context) bool
	Run(ctx *Context, onFinished func())
}
