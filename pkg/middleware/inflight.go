package middleware

import (
	"sync"
)

// InFlightGuard tracks operations that are currently running so duplicates
// can be rejected. Submitting a booking or firing a bulk delete twice in
// quick succession would otherwise issue duplicate remote calls; the remote
// service does not de-duplicate on its side.
type InFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{
		active: make(map[string]struct{}),
	}
}

// Acquire marks key as running. It returns false when the key is already held.
func (g *InFlightGuard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.active[key]; exists {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *InFlightGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
