package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_CatalogOrder(t *testing.T) {
	s := newTestScheduler(t, Config{Catalog: []Event{
		instantEvent("b", 1, 0),
		instantEvent("a", 1, 0),
	}})

	infos := s.Events()
	require.Len(t, infos, 2)
	assert.Equal(t, "b", infos[0].ID)
	assert.Equal(t, "a", infos[1].ID)
}

func TestEvent_Lookup(t *testing.T) {
	ev := instantEvent("a", 1, 0)
	s := newTestScheduler(t, Config{Catalog: []Event{ev}})

	got, ok := s.Event("a")
	require.True(t, ok)
	assert.Equal(t, ev, got)

	_, ok = s.Event("missing")
	assert.False(t, ok)
}

func TestIsEventEnabled(t *testing.T) {
	disabled := instantEvent("off", 1, 0)
	disabled.info.Enabled = false
	s := newTestScheduler(t, Config{Catalog: []Event{
		instantEvent("on", 1, 0),
		disabled,
	}})

	assert.True(t, s.IsEventEnabled("on"))
	assert.False(t, s.IsEventEnabled("off"))
	assert.False(t, s.IsEventEnabled("missing"))
}

func TestRemainingCooldown_NeverRan(t *testing.T) {
	s := newTestScheduler(t, Config{Catalog: []Event{
		instantEvent("a", 1, time.Minute),
	}})

	_, ok := s.RemainingCooldown("a")
	assert.False(t, ok)
	assert.Empty(t, s.FriendlyCooldownText("a"))
}

func TestFormatCooldown(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "1s"},
		{45 * time.Second, "45s"},
		{150 * time.Second, "2m 30s"},
		{2 * time.Minute, "2m"},
		{62 * time.Minute, "1h 2m"},
		{3661 * time.Second, "1h 1m 1s"},
		{2 * time.Hour, "2h"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, formatCooldown(tc.in), "formatCooldown(%v)", tc.in)
	}
}
