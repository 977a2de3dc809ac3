// Package inflight rejects a second submission from the same caller while the
// first one is still running. It is a cooperative guard scoped to this
// process, not an idempotency key.
package inflight

import (
	"sync"

	"changemakers/pkg/types"
)

type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// Acquire marks key as in flight. The returned release func must be called
// once the submission finishes; calling it more than once is harmless.
func (g *Guard) Acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return nil, types.ErrSubmissionInFlight
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, nil
}

func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, busy := g.active[key]
	return busy
}
