package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
)

const quoteEndpoint = "https://quotes-api-self.vercel.app/quote"

// MotivationEvent fetches a motivational quote and speaks it with
// attribution.
type MotivationEvent struct {
	client *http.Client
}

func NewMotivationEvent() *MotivationEvent {
	return &MotivationEvent{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *MotivationEvent) Info() events.Info {
	return events.Info{
		ID:       "motivation",
		Name:     "Motivational Quote",
		Enabled:  true,
		Weight:   0.7,
		Cooldown: 400 * time.Second,
	}
}

func (e *MotivationEvent) CanRun(ctx *events.Context) bool {
	return speechIdle(ctx)
}

func (e *MotivationEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID, flags.Petting)

	go func() {
		quote, author := e.fetchQuote()
		duration := ctx.Speech.Say(fmt.Sprintf("%s -%s", quote, author))

		ctx.Delay(duration+150*time.Millisecond, func() {
			lock.Release()
			onFinished()
		})
	}()
}

func (e *MotivationEvent) fetchQuote() (string, string) {
	quote := "whatever happens, dont forget to stay positive! :D"
	author := "rockin' (i couldnt find anything else motivational)"

	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, quoteEndpoint, nil)
	if err != nil {
		return quote, author
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return quote, author
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return quote, author
	}

	var payload struct {
		Quote  string `json:"quote"`
		Author string `json:"author"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return quote, author
	}
	if payload.Quote != "" {
		quote = strings.ToLower(payload.Quote)
	}
	if payload.Author != "" {
		author = strings.ToLower(payload.Author)
	}
	return quote, author
}
