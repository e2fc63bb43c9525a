package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/aimcache"
)

type countHooks struct {
	aimcache.NopHooks
	mu    sync.Mutex
	calls map[string]int
	gate  chan struct{}
}

func (c *countHooks) inc(name string) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}

func (c *countHooks) InvalidKey(string)                  { c.inc("invalid") }
func (c *countHooks) BackendError(string, string, error) { c.inc("backend") }
func (c *countHooks) FallbackFailed(string, error)       { c.inc("fallback") }
func (c *countHooks) Connection(string, string, error)   { c.inc("connection") }

func TestForwardsAndDrainsOnClose(t *testing.T) {
	inner := &countHooks{calls: map[string]int{}}
	h := New(inner, 2, 64)

	h.InvalidKey("get")
	h.BackendError("get", "k", errors.New("x"))
	h.FallbackFailed("k", errors.New("x"))
	h.Connection("ready", "", nil)
	h.Close()

	for _, name := range []string{"invalid", "backend", "fallback", "connection"} {
		if inner.calls[name] != 1 {
			t.Fatalf("%s forwarded %d times", name, inner.calls[name])
		}
	}
	if h.Dropped() != 0 {
		t.Fatalf("unexpected drops: %d", h.Dropped())
	}
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{calls: map[string]int{}, gate: make(chan struct{})}
	h := New(inner, 1, 1)

	// worker blocks on the first event; queue holds one more; the rest drop
	for i := 0; i < 10; i++ {
		h.InvalidKey("get")
	}
	close(inner.gate)
	h.Close()

	if got := inner.calls["invalid"] + int(h.Dropped()); got != 10 {
		t.Fatalf("delivered+dropped = %d want 10", got)
	}
	if h.Dropped() < 8 {
		t.Fatalf("expected most events dropped, got %d", h.Dropped())
	}
}

func TestEventsAfterCloseAreDropped(t *testing.T) {
	h := New(&countHooks{calls: map[string]int{}}, 1, 4)
	h.Close()
	h.Close()
	h.Miss("get", "k") // must not panic on the closed queue
	if h.Dropped() != 1 {
		t.Fatalf("want 1 drop, got %d", h.Dropped())
	}
}
