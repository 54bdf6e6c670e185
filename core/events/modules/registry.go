// Package modules contains the built-in sprite event catalog. Events are
// registered explicitly here rather than discovered at runtime; the
// scheduler receives this list at construction.
package modules

import (
	"github.com/cyberahree/rockin/core/events"
	"github.com/cyberahree/rockin/core/location"
)

// Deps carries the collaborators individual events are constructed with.
type Deps struct {
	// Location resolves geolocation and weather for the weather event.
	// Nil leaves the weather event permanently ineligible.
	Location *location.Resolver
}

// Catalog returns the full built-in event list.
func Catalog(deps Deps) []events.Event {
	return []events.Event{
		NewRemoveDecorationEvent(),
		NewMotivationEvent(),
		NewRandomThoughtEvent(),
		NewUselessFactEvent(),
		NewWeatherEvent(deps.Location),
		NewTimeEvent(),
		NewJokeEvent(),
		NewNapEvent(),
	}
}

// speechIdle reports whether the speech queue is empty and nothing is being
// displayed, the common eligibility check for speaking events.
func speechIdle(ctx *events.Context) bool {
	if ctx.Speech == nil {
		return false
	}
	return ctx.Speech.QueueLen() == 0 && !ctx.Speech.Active()
}
