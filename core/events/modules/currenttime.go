package modules

import (
	"math/rand"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
)

var (
	morningPhrases = []string{
		"good morning! hope you're having a productive start!",
		"early bird catches the worm, i see!",
		"fresh start to the day, let's make it count!",
		"rise and shine! time to get things done!",
		"morning grind, let's go!",
	}
	afternoonPhrases = []string{
		"afternoon slump? time for a break maybe?",
		"halfway through the day, you're doing great!",
		"remember to stay hydrated!",
		"keep up the great work this afternoon!",
		"afternoon hustle, almost there!",
	}
	eveningPhrases = []string{
		"burning the midnight oil i see!",
		"evening session, almost time to rest soon?",
		"time flies when you're focused!",
		"don't forget to unwind before bed!",
	}
)

// TimeEvent has the sprite comment on the time of day.
type TimeEvent struct {
	// now is swappable so tests can pin the hour.
	now func() time.Time
}

func NewTimeEvent() *TimeEvent {
	return &TimeEvent{now: time.Now}
}

func (e *TimeEvent) Info() events.Info {
	return events.Info{
		ID:       "time",
		Name:     "Current Time",
		Enabled:  true,
		Weight:   0.9,
		Cooldown: 500 * time.Second,
	}
}

func (e *TimeEvent) CanRun(ctx *events.Context) bool {
	return speechIdle(ctx)
}

func (e *TimeEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID, flags.Petting)

	duration := ctx.Speech.Say(e.timePhrase())

	ctx.Delay(duration+150*time.Millisecond, func() {
		lock.Release()
		onFinished()
	})
}

func (e *TimeEvent) timePhrase() string {
	hour := e.now().Hour()

	switch {
	case hour >= 5 && hour < 12:
		return morningPhrases[rand.Intn(len(morningPhrases))]
	case hour >= 12 && hour < 17:
		return afternoonPhrases[rand.Intn(len(afternoonPhrases))]
	default:
		return eveningPhrases[rand.Intn(len(eveningPhrases))]
	}
}
