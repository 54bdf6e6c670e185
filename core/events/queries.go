package events

import (
	"fmt"
	"strings"
	"time"
)

// Events returns the static metadata of every catalog event, in catalog
// order. Used by UI surfaces (start menu, event window) to list events.
func (s *Scheduler) Events() []Info {
	infos := make([]Info, 0, len(s.catalog))
	for _, ev := range s.catalog {
		infos = append(infos, ev.Info())
	}
	return infos
}

// Event looks up a catalog event by id.
func (s *Scheduler) Event(id string) (Event, bool) {
	ev, ok := s.byID[id]
	return ev, ok
}

// IsEventEnabled reports whether the event exists and is enabled.
func (s *Scheduler) IsEventEnabled(id string) bool {
	ev, ok := s.byID[id]
	return ok && ev.Info().Enabled
}

// RemainingCooldown returns how long until the event becomes eligible again.
// The second return is false when the event is unknown or no cooldown is
// currently in effect.
func (s *Scheduler) RemainingCooldown(id string) (time.Duration, bool) {
	ev, ok := s.byID[id]
	if !ok {
		return 0, false
	}

	info := ev.Info()
	if info.Cooldown <= 0 {
		return 0, false
	}

	s.mu.Lock()
	last, ran := s.lastRun[id]
	s.mu.Unlock()

	if !ran {
		return 0, false
	}

	remaining := info.Cooldown - time.Since(last)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// FriendlyCooldownText returns the remaining cooldown formatted for display,
// e.g. "2m 30s", or an empty string when no cooldown is in effect.
func (s *Scheduler) FriendlyCooldownText(id string) string {
	remaining, ok := s.RemainingCooldown(id)
	if !ok {
		return ""
	}
	return formatCooldown(remaining)
}

// formatCooldown renders a duration as whole hours, minutes, and seconds,
// rounding partial seconds up so "just under a second" never shows as empty.
func formatCooldown(d time.Duration) string {
	seconds := int64((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
