package bot

import "sync"

// convState is a user's pending conversation state. A menu action
// moves the user out of idle; the user's next free-text message
// resolves the state and returns them to idle
type convState int

const (
	// stateIdle means free-text messages are conversion queries
	stateIdle convState = iota

	// stateAwaitingAd means the next message is an ad submission
	stateAwaitingAd

	// stateAwaitingBroadcast means the next message is broadcast
	// to all registered users
	stateAwaitingBroadcast
)

// stateTracker keeps per-user conversation state, keyed by sender ID.
// It replaces the reply-threading state mechanism, which breaks down
// under interleaved conversations
type stateTracker struct {
	states map[int64]convState

	mu sync.Mutex
}

func newStateTracker() *stateTracker {
	return &stateTracker{
		states: make(map[int64]convState),
	}
}

// get returns the user's current state
func (t *stateTracker) get(userID int64) convState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.states[userID]
}

// set moves the user to the given state
func (t *stateTracker) set(userID int64, s convState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s == stateIdle {
		delete(t.states, userID)

		return
	}

	t.states[userID] = s
}

// resolve returns the user's current state and moves them back to idle
func (t *stateTracker) resolve(userID int64) convState {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.states[userID]
	delete(t.states, userID)

	return s
}
