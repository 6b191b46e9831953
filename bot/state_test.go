package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTracker(t *testing.T) {
	t.Parallel()

	t.Run("idle by default", func(t *testing.T) {
		t.Parallel()

		tracker := newStateTracker()

		assert.Equal(t, stateIdle, tracker.get(10))
	})

	t.Run("resolve returns to idle", func(t *testing.T) {
		t.Parallel()

		tracker := newStateTracker()

		tracker.set(10, stateAwaitingAd)
		assert.Equal(t, stateAwaitingAd, tracker.get(10))

		assert.Equal(t, stateAwaitingAd, tracker.resolve(10))
		assert.Equal(t, stateIdle, tracker.get(10))
	})

	t.Run("states are per user", func(t *testing.T) {
		t.Parallel()

		tracker := newStateTracker()

		tracker.set(10, stateAwaitingAd)
		tracker.set(20, stateAwaitingBroadcast)

		// Interleaved conversations don't cross
		assert.Equal(t, stateAwaitingAd, tracker.resolve(10))
		assert.Equal(t, stateAwaitingBroadcast, tracker.resolve(20))
	})

	t.Run("explicit idle clears pending state", func(t *testing.T) {
		t.Parallel()

		tracker := newStateTracker()

		tracker.set(10, stateAwaitingBroadcast)
		tracker.set(10, stateIdle)

		assert.Equal(t, stateIdle, tracker.resolve(10))
	})
}
