package modules

import (
	"math/rand"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
)

// NapEvent puts the sprite to sleep for a few seconds. Dragging, eye
// tracking, and petting are locked for the duration of the nap.
type NapEvent struct{}

func NewNapEvent() *NapEvent {
	return &NapEvent{}
}

func (e *NapEvent) Info() events.Info {
	return events.Info{
		ID:       "nap",
		Name:     "Quick Nap",
		Enabled:  true,
		Weight:   0.6,
		Cooldown: 120 * time.Second,
	}
}

func (e *NapEvent) CanRun(ctx *events.Context) bool {
	// don't start if the user is currently dragging or interacting
	if ctx.Sprite == nil || ctx.Sprite.Dragging() {
		return false
	}
	return speechIdle(ctx)
}

func (e *NapEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID, flags.Drag, flags.Eyetrack, flags.Petting)

	sleepDuration := time.Duration(4000+rand.Intn(3001)) * time.Millisecond

	ctx.Sprite.SetFeatures("idle", "sleepy", true)
	ctx.Speech.Say("zzz...")

	ctx.Delay(sleepDuration, func() {
		ctx.Sprite.SetFeatures("idle", "idle", false)
		lock.Release()
		onFinished()
	})
}
