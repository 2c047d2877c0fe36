package voice

import "sync"

// Tracker holds the latest speaking flag per participant identity. Producers
// call Set from their own goroutines; the scene reads once per tick.
type Tracker struct {
	mu       sync.RWMutex
	speaking map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{speaking: make(map[string]bool)}
}

// Set records whether identity is currently speaking.
func (t *Tracker) Set(identity string, speaking bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !speaking {
		delete(t.speaking, identity)
		return
	}
	t.speaking[identity] = true
}

// Speaking reports the last flag set for identity; unknown identities are
// silent.
func (t *Tracker) Speaking(identity string) bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.speaking[identity]
}

// Forget drops any state held for identity.
func (t *Tracker) Forget(identity string) {
	t.Set(identity, false)
}
