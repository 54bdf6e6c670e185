// Package flags implements the interactability flag registry for the sprite.
//
// A flag is a named capability ("drag", "blink", "petting", ...) that any
// number of owners can disable at once. The flag stays disabled until every
// owner has released it. Flags are advisory: acquisition never blocks and
// there is no queueing, so the registry is a shared ledger rather than a
// mutex in the OS sense.
//
// Flags currently tracked by the sprite system:
//   - "drag"      user dragging of the sprite
//   - "blink"     blinking of the sprite's eyes
//   - "petting"   petting interaction
//   - "eyetrack"  cursor tracking
//   - "autopilot" the sprite update loop; events set sprite features manually
//   - "startmenu" opening the start menu
package flags

import "sync"

// Well-known flag names. Events and interaction controllers may define
// additional flags; the registry does not validate names.
const (
	Drag      = "drag"
	Blink     = "blink"
	Petting   = "petting"
	Eyetrack  = "eyetrack"
	Autopilot = "autopilot"
	StartMenu = "startmenu"
)

// Registry tracks which owners currently hold which flags.
// Safe for concurrent use by the scheduler, watchdog timers, and
// interaction controllers.
type Registry struct {
	mu    sync.Mutex
	locks map[string]map[string]struct{}
}

// NewRegistry creates an empty flag registry.
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]map[string]struct{}),
	}
}

// IsEnabled reports whether a flag has no holders.
func (r *Registry) IsEnabled(flag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks[flag]) == 0
}

// AnyDisabled reports whether at least one of the given flags is held.
func (r *Registry) AnyDisabled(flags ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, flag := range flags {
		if len(r.locks[flag]) > 0 {
			return true
		}
	}
	return false
}

// Acquire adds owner to the holder set of each flag and returns a token
// covering exactly this acquisition. Acquire never blocks.
func (r *Registry) Acquire(owner string, flagNames ...string) *Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, flag := range flagNames {
		owners, ok := r.locks[flag]
		if !ok {
			owners = make(map[string]struct{})
			r.locks[flag] = owners
		}
		owners[owner] = struct{}{}
	}

	return &Token{
		owner:    owner,
		flags:    append([]string(nil), flagNames...),
		registry: r,
	}
}

// Release removes owner from the holder set of each flag. Flag entries whose
// holder set becomes empty are pruned.
func (r *Registry) Release(owner string, flagNames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, flag := range flagNames {
		r.releaseLocked(owner, flag)
	}
}

func (r *Registry) releaseLocked(owner, flag string) {
	owners, ok := r.locks[flag]
	if !ok {
		return
	}

	delete(owners, owner)
	if len(owners) == 0 {
		delete(r.locks, flag)
	}
}

// ClearOwner force-removes an owner from every flag it holds. The scheduler
// uses this when a hung or crashed event is forcibly finished, so no flag can
// be left permanently stuck.
func (r *Registry) ClearOwner(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for flag := range r.locks {
		r.releaseLocked(owner, flag)
	}
}

// Holders returns the owners currently holding a flag.
func (r *Registry) Holders(flag string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	owners := make([]string, 0, len(r.locks[flag]))
	for owner := range r.locks[flag] {
		owners = append(owners, owner)
	}
	return owners
}

// Token is the releasable handle returned by Acquire. Release is idempotent
// and safe to call after the owning event has already been force-finished.
type Token struct {
	owner    string
	flags    []string
	registry *Registry

	mu       sync.Mutex
	released bool
}

// Owner returns the owner id this token was acquired for.
func (t *Token) Owner() string {
	return t.owner
}

// Flags returns the flag names covered by this token.
func (t *Token) Flags() []string {
	return append([]string(nil), t.flags...)
}

// Release removes the owner from every flag named in the token.
// A second call is a no-op.
func (t *Token) Release() {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	t.mu.Unlock()

	t.registry.Release(t.owner, t.flags...)
}
