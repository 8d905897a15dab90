package cache

import "sync"

// Group coordinates single-flight execution per key. The first caller to
// Acquire a key becomes its owner and must Release it when done; concurrent
// callers receive a channel that closes on release. Waiters that time out
// simply re-attempt acquisition, so a stuck owner can never wedge a key
// forever.
//
// This is deliberately an ownership primitive rather than a result-carrying
// one: waiters re-check the resolver's memory cache after waking, which is
// written before the owner releases.
type Group struct {
	mu      sync.Mutex
	flights map[string]chan struct{}
}

// NewGroup creates an empty single-flight group.
func NewGroup() *Group {
	return &Group{flights: make(map[string]chan struct{})}
}

// Acquire attempts to take ownership of key. It returns true when the
// caller is now the owner; otherwise it returns a channel that closes when
// the current owner releases the key.
func (g *Group) Acquire(key string) (owner bool, wait <-chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch, inFlight := g.flights[key]; inFlight {
		return false, ch
	}
	g.flights[key] = make(chan struct{})
	return true, nil
}

// Release gives up ownership of key and wakes all waiters. Safe to call
// for a key that is not held (e.g. after a Wake cleared the group).
func (g *Group) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch, ok := g.flights[key]; ok {
		close(ch)
		delete(g.flights, key)
	}
}

// Wake releases every in-flight key, waking all waiters. Used by the
// resolver's reset hook.
func (g *Group) Wake() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, ch := range g.flights {
		close(ch)
		delete(g.flights, key)
	}
}

// Len returns the number of in-flight keys.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.flights)
}
