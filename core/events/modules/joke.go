package modules

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
)

const jokeEndpoint = "https://official-joke-api.appspot.com/random_joke"

// JokeEvent fetches a two-part joke and delivers it through the speech
// bubble. The fetch happens on a goroutine so the scheduler loop is never
// stalled; on any fetch failure a canned fallback joke is used instead.
type JokeEvent struct {
	client *http.Client
}

func NewJokeEvent() *JokeEvent {
	return &JokeEvent{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *JokeEvent) Info() events.Info {
	return events.Info{
		ID:       "joke",
		Name:     "Tell a Joke",
		Enabled:  true,
		Weight:   0.8,
		Cooldown: 450 * time.Second,
	}
}

func (e *JokeEvent) CanRun(ctx *events.Context) bool {
	return speechIdle(ctx)
}

func (e *JokeEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID, flags.Petting, flags.Autopilot)

	go func() {
		setup, punchline := e.fetchJoke()

		ctx.Sprite.SetFeatures("idle", "petting", true)

		total := ctx.Speech.Say(setup)
		total += ctx.Speech.Say(punchline)

		ctx.Delay(total+500*time.Millisecond, func() {
			ctx.Sprite.SetFeatures("idle", "idle", false)
			lock.Release()
			onFinished()
		})
	}()
}

func (e *JokeEvent) fetchJoke() (string, string) {
	setup := "why did the joke API fail? .."
	punchline := "it was having a bad request day! ahah! i know, so funny 8)"

	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, jokeEndpoint, nil)
	if err != nil {
		return setup, punchline
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return setup, punchline
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return setup, punchline
	}

	var joke struct {
		Setup     string `json:"setup"`
		Punchline string `json:"punchline"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&joke); err != nil {
		return setup, punchline
	}
	if joke.Setup != "" {
		setup = strings.ToLower(joke.Setup)
	}
	if joke.Punchline != "" {
		punchline = strings.ToLower(joke.Punchline)
	}
	return setup, punchline
}
