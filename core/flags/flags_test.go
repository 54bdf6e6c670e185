package flags

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AcquireDisablesFlag(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.IsEnabled(Drag))

	token := r.Acquire("nap", Drag, Eyetrack)

	assert.False(t, r.IsEnabled(Drag))
	assert.False(t, r.IsEnabled(Eyetrack))
	assert.True(t, r.IsEnabled(Blink))

	token.Release()

	assert.True(t, r.IsEnabled(Drag))
	assert.True(t, r.IsEnabled(Eyetrack))
}

func TestRegistry_TwoOwnersBothMustRelease(t *testing.T) {
	r := NewRegistry()

	first := r.Acquire("nap", Petting)
	second := r.Acquire("dragger", Petting)

	assert.False(t, r.IsEnabled(Petting))

	first.Release()
	assert.False(t, r.IsEnabled(Petting), "flag still held by second owner")

	second.Release()
	assert.True(t, r.IsEnabled(Petting))
}

func TestRegistry_AnyDisabled(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.AnyDisabled(Drag, Blink))

	token := r.Acquire("joke", Blink)
	defer token.Release()

	assert.True(t, r.AnyDisabled(Drag, Blink))
	assert.False(t, r.AnyDisabled(Drag, Petting))
}

func TestToken_ReleaseIsIdempotent(t *testing.T) {
	r := NewRegistry()

	token := r.Acquire("nap", Drag)
	token.Release()
	assert.True(t, r.IsEnabled(Drag))

	// a second owner now holds the flag; the stale token must not
	// affect it
	other := r.Acquire("dragger", Drag)
	token.Release()
	assert.False(t, r.IsEnabled(Drag))

	other.Release()
	assert.True(t, r.IsEnabled(Drag))
}

func TestRegistry_ClearOwner(t *testing.T) {
	r := NewRegistry()

	r.Acquire("weather", Drag, Blink, Petting)
	r.Acquire("dragger", Drag)

	r.ClearOwner("weather")

	assert.True(t, r.IsEnabled(Blink))
	assert.True(t, r.IsEnabled(Petting))
	assert.False(t, r.IsEnabled(Drag), "dragger still holds drag")

	r.ClearOwner("dragger")
	assert.True(t, r.IsEnabled(Drag))
}

func TestRegistry_ReleaseAfterClearOwnerIsNoop(t *testing.T) {
	r := NewRegistry()

	token := r.Acquire("nap", Drag)
	r.ClearOwner("nap")
	require.True(t, r.IsEnabled(Drag))

	token.Release()
	assert.True(t, r.IsEnabled(Drag))
}

func TestRegistry_Holders(t *testing.T) {
	r := NewRegistry()

	r.Acquire("nap", Drag)
	r.Acquire("joke", Drag)

	holders := r.Holders(Drag)
	assert.ElementsMatch(t, []string{"nap", "joke"}, holders)
	assert.Empty(t, r.Holders(Blink))
}

func TestRegistry_ConcurrentAcquireRelease(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(owner byte) {
			defer wg.Done()
			token := r.Acquire(string([]byte{'a' + owner}), Drag, Blink)
			r.AnyDisabled(Drag, Blink)
			token.Release()
		}(byte(i % 26))
	}
	wg.Wait()

	assert.True(t, r.IsEnabled(Drag))
	assert.True(t, r.IsEnabled(Blink))
}
