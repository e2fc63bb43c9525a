// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    BackendErrorEvery: 10, // sample logs: ~every 10th backend error
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := aimcache.New[User](aimcache.Options[User]{
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/aimcache"
)

// Hooks forwards events to inner on background workers. When the queue is
// full events are dropped and counted, so the cache never waits on a sink.
type Hooks struct {
	inner   aimcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed queue
	closed  bool
	dropped atomic.Uint64
}

var _ aimcache.Hooks = (*Hooks)(nil)

func New(inner aimcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) InvalidKey(op string) { h.try(func() { h.inner.InvalidKey(op) }) }
func (h *Hooks) Hit(op, k string)     { h.try(func() { h.inner.Hit(op, k) }) }
func (h *Hooks) Miss(op, k string)    { h.try(func() { h.inner.Miss(op, k) }) }
func (h *Hooks) BackendError(op, k string, err error) {
	h.try(func() { h.inner.BackendError(op, k, err) })
}
func (h *Hooks) CodecError(op, k string, err error) {
	h.try(func() { h.inner.CodecError(op, k, err) })
}
func (h *Hooks) FallbackFailed(k string, err error) {
	h.try(func() { h.inner.FallbackFailed(k, err) })
}
func (h *Hooks) ExpireFailed(k string, err error) {
	h.try(func() { h.inner.ExpireFailed(k, err) })
}
func (h *Hooks) Connection(ev, addr string, err error) {
	h.try(func() { h.inner.Connection(ev, addr, err) })
}
