package modules

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/flags"
	"github.com/cyberahree/rockin/core/location"
)

// WeatherEvent reports the current weather for the user's approximate
// location. Never eligible without a resolver or when lookups are disabled.
type WeatherEvent struct {
	resolver *location.Resolver
}

func NewWeatherEvent(resolver *location.Resolver) *WeatherEvent {
	return &WeatherEvent{resolver: resolver}
}

func (e *WeatherEvent) Info() events.Info {
	return events.Info{
		ID:          "weather",
		Name:        "Current Weather",
		Enabled:     true,
		Weight:      0.35,
		Cooldown:    7200 * time.Second,
		MaxDuration: 60 * time.Second,
	}
}

func (e *WeatherEvent) CanRun(ctx *events.Context) bool {
	if e.resolver == nil {
		return false
	}
	return speechIdle(ctx)
}

func (e *WeatherEvent) Run(ctx *events.Context, onFinished func()) {
	lock := ctx.Lock(e.Info().ID, flags.Petting, flags.Autopilot)

	go func() {
		duration := ctx.Speech.Say(e.weatherPhrase(ctx))

		ctx.Delay(duration+150*time.Millisecond, func() {
			lock.Release()
			onFinished()
		})
	}()
}

func (e *WeatherEvent) weatherPhrase(ctx *events.Context) string {
	reqCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	loc, err := e.resolver.Locate(reqCtx)
	if err != nil {
		ctx.Logger().Debug("weather location lookup failed", "error", err)
		return "i tried to check the weather, but i couldn't see outside.. :<"
	}

	weather, err := e.resolver.CurrentWeather(reqCtx, loc)
	if err != nil {
		ctx.Logger().Debug("weather fetch failed", "error", err)
		return fmt.Sprintf("the weather in %s is a mystery to me right now..", loc.City)
	}

	phrase := fmt.Sprintf("it's %.1f degrees in %s right now", weather.TemperatureC, loc.City)
	if weather.PrecipitationMM > 0 {
		phrase += ", and it's raining! stay dry ^^"
	} else if weather.WindSpeedKMH > 30 {
		phrase += ", and pretty windy out there!"
	} else {
		phrase += ". not bad at all!"
	}
	return phrase
}
