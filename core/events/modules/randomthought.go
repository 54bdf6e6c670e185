package modules

import (
	"math/rand"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
)

var randomThoughts = []string{
	"i wonder what you're working on right now",
	"wouldn't it be nice to take a walk?",
	"i'm curious about what you think of today",
	"sometimes the best ideas come when you're relaxing",
	"have you had enough water today?",
	"i bet you're doing something interesting!",
	"random thought: what's your favorite color?",
	"i hope you're having a good day so far",
	"sometimes it's good to just pause and reflect",
	"you know what? you're pretty cool :>",
}

// RandomThoughtEvent speaks an idle musing. Locks everything while the
// thought is displayed so the sprite sits still.
type RandomThoughtEvent struct{}

func NewRandomThoughtEvent() *RandomThoughtEvent {
	return &RandomThoughtEvent{}
}

func (e *RandomThoughtEvent) Info() events.Info {
	return events.Info{
		ID:       "randomThought",
		Name:     "Random Thought",
		Enabled:  true,
		Weight:   1.0,
		Cooldown: 350 * time.Second,
	}
}

func (e *RandomThoughtEvent) CanRun(ctx *events.Context) bool {
	return speechIdle(ctx)
}

func (e *RandomThoughtEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID,
		flags.Drag, flags.Eyetrack, flags.Petting, flags.Blink, flags.Autopilot)

	duration := ctx.Speech.Say(randomThoughts[rand.Intn(len(randomThoughts))])

	ctx.Delay(duration+150*time.Millisecond, func() {
		lock.Release()
		onFinished()
	})
}
