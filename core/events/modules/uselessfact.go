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

const uselessFactEndpoint = "https://uselessfacts.jsph.pl/api/v2/facts/random"

// UselessFactEvent fetches a random fact and speaks it.
type UselessFactEvent struct {
	client *http.Client
}

func NewUselessFactEvent() *UselessFactEvent {
	return &UselessFactEvent{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *UselessFactEvent) Info() events.Info {
	return events.Info{
		ID:       "uselessFact",
		Name:     "Useless Fact",
		Enabled:  true,
		Weight:   0.95,
		Cooldown: 300 * time.Second,
	}
}

func (e *UselessFactEvent) CanRun(ctx *events.Context) bool {
	return speechIdle(ctx)
}

func (e *UselessFactEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID, flags.Petting)

	go func() {
		duration := ctx.Speech.Say(e.fetchFact())

		ctx.Delay(duration+150*time.Millisecond, func() {
			lock.Release()
			onFinished()
		})
	}()
}

func (e *UselessFactEvent) fetchFact() string {
	fallback := "i tried to get one, but i couldn't"

	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, uselessFactEndpoint, nil)
	if err != nil {
		return fallback
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}

	var fact struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fact); err != nil {
		return fallback
	}
	if fact.Text == "" {
		return "i couldnt understand what the fact was.. :<"
	}
	return strings.ToLower(fact.Text)
}
