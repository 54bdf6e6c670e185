// Package config loads and watches the application configuration.
// Readers get an immutable snapshot via Get; live updates arrive through
// OnChange callbacks after a reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyberahree/rockin/core/events"
	"gopkg.in/yaml.v3"
)

type Manager struct {
	path      string
	current   atomic.Pointer[Config]
	watchers  []func(*Config)
	watcherMu sync.RWMutex
	stopWatch chan struct{}
	watchOnce sync.Once
}

type Config struct {
	Events   EventsConfig   `yaml:"events"`
	Location LocationConfig `yaml:"location"`
	Sound    SoundConfig    `yaml:"sound"`
}

type EventsConfig struct {
	Enabled bool `yaml:"enabled"`

	// StartupMinimumDelay is the seconds to wait after launch before the
	// first autonomous event.
	StartupMinimumDelay int `yaml:"startup_minimum_delay"`

	// MaxEventDuration is the default watchdog ceiling in seconds.
	MaxEventDuration int `yaml:"max_event_duration"`

	EventIntervalRange IntervalRange `yaml:"event_interval_range"`
}

// IntervalRange bounds the random delay between event ticks, in seconds.
type IntervalRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type LocationConfig struct {
	// AllowLookup permits IP-based geolocation for the weather event.
	AllowLookup bool `yaml:"allow_lookup"`
}

type SoundConfig struct {
	// Volume is the master volume multiplier for event sounds.
	Volume float64 `yaml:"volume"`
}

// NewManager creates a manager reading from the given YAML file path.
// The defaults are active until Load is called.
func NewManager(path string) *Manager {
	m := &Manager{
		path:      path,
		stopWatch: make(chan struct{}),
	}
	m.current.Store(DefaultConfig())
	return m
}

func DefaultConfig() *Config {
	return &Config{
		Events: EventsConfig{
			Enabled:             true,
			StartupMinimumDelay: 15,
			MaxEventDuration:    120,
			EventIntervalRange: IntervalRange{
				Min: 300,
				Max: 600,
			},
		},
		Location: LocationConfig{
			AllowLookup: true,
		},
		Sound: SoundConfig{
			Volume: 1.0,
		},
	}
}

// Get returns the current configuration snapshot. The returned value must be
// treated as read-only.
func (m *Manager) Get() *Config {
	return m.current.Load()
}

// Load reads the config file over the defaults, applies environment
// overrides, swaps in the new snapshot, and notifies watchers. A missing
// file is not an error.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if err := m.loadYAMLFile(m.path, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", m.path, err)
	}

	m.applyEnvironment(cfg)

	m.current.Store(cfg)
	m.notifyWatchers(cfg)
	return nil
}

func (m *Manager) loadYAMLFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func (m *Manager) applyEnvironment(cfg *Config) {
	if v := os.Getenv("ROCKIN_EVENTS_ENABLED"); v != "" {
		cfg.Events.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("ROCKIN_EVENTS_STARTUP_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Events.StartupMinimumDelay = n
		}
	}
	if v := os.Getenv("ROCKIN_EVENTS_MAX_DURATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Events.MaxEventDuration = n
		}
	}
	if v := os.Getenv("ROCKIN_EVENTS_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Events.EventIntervalRange.Min = n
		}
	}
	if v := os.Getenv("ROCKIN_EVENTS_INTERVAL_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Events.EventIntervalRange.Max = n
		}
	}
	if v := os.Getenv("ROCKIN_LOCATION_ALLOW_LOOKUP"); v != "" {
		cfg.Location.AllowLookup = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("ROCKIN_SOUND_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sound.Volume = f
		}
	}
}

// OnChange registers a callback invoked with each new snapshot after a
// reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	m.watchers = append(m.watchers, fn)
	m.watcherMu.Unlock()
}

func (m *Manager) notifyWatchers(cfg *Config) {
	m.watcherMu.RLock()
	watchers := m.watchers
	m.watcherMu.RUnlock()

	for _, fn := range watchers {
		fn(cfg)
	}
}

// Reload re-reads the config file, identical to Load.
func (m *Manager) Reload() error {
	return m.Load()
}

// Close stops the file watcher if one is running.
func (m *Manager) Close() error {
	m.watchOnce.Do(func() {
		close(m.stopWatch)
	})
	return nil
}

// SchedulerSettings converts the events section into scheduler settings.
func (c EventsConfig) SchedulerSettings() events.Settings {
	return events.Settings{
		Enabled:          c.Enabled,
		StartupDelay:     time.Duration(c.StartupMinimumDelay) * time.Second,
		IntervalMin:      time.Duration(c.EventIntervalRange.Min) * time.Second,
		IntervalMax:      time.Duration(c.EventIntervalRange.Max) * time.Second,
		MaxEventDuration: time.Duration(c.MaxEventDuration) * time.Second,
	}
}
