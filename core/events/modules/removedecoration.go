package modules

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
	"github.com/cyberahree/rockin/core/scene"
)

// RemoveDecorationEvent has the sprite tidy up: it walks to the decoration
// nearest to it, spawns a skip, bins the decoration, and admires the result.
// The rarest event in the catalog.
type RemoveDecorationEvent struct{}

func NewRemoveDecorationEvent() *RemoveDecorationEvent {
	return &RemoveDecorationEvent{}
}

func (e *RemoveDecorationEvent) Info() events.Info {
	return events.Info{
		ID:       "removeDecoration",
		Name:     "Remove a Decoration",
		Enabled:  true,
		Weight:   0.05,
		Cooldown: 600 * time.Second,
	}
}

func (e *RemoveDecorationEvent) CanRun(ctx *events.Context) bool {
	if ctx.Scene == nil || len(ctx.Scene.Entities()) < 1 {
		return false
	}
	return speechIdle(ctx)
}

func (e *RemoveDecorationEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID,
		flags.Drag, flags.Eyetrack, flags.Petting, flags.Blink, flags.Autopilot, flags.StartMenu)

	finish := func() {
		lock.Release()
		onFinished()
	}

	centre := ctx.Sprite.Centre()
	target, ok := ctx.Scene.NearestTo(centre, math.Inf(1))
	if !ok {
		// scene emptied between CanRun and Run
		finish()
		return
	}

	displayName := strings.ReplaceAll(target.Name, "_", " ")
	duration := ctx.Speech.Say(fmt.Sprintf("this %s looks a bit out of place..", displayName))

	ctx.Delay(duration+150*time.Millisecond, func() {
		duration := ctx.Speech.Say("let me just remove it quickly!")
		skipID := ctx.Scene.Spawn("skip", scene.Point{X: centre.X - 50, Y: centre.Y}, true)

		ctx.Delay(duration+150*time.Millisecond, func() {
			ctx.Scene.Remove(target.EntityID)
			ctx.Sounds.Play("bin.wav", 1.0, nil)

			ctx.Delay(450*time.Millisecond, func() {
				duration := ctx.Speech.Say("there we go!")

				ctx.Delay(duration+150*time.Millisecond, func() {
					ctx.Scene.Remove(skipID)
					duration := ctx.Speech.Say("it looks beautiful now, doesn't it? ^^")

					ctx.Delay(duration+150*time.Millisecond, finish)
				})
			})
		})
	})
}
