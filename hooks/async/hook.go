// usage:
//
//	raw := bookcache.MultiHooks(
//	    sloghooks.New(slog.Default(), sloghooks.Options{MissEvery: 10}),
//	    promhooks.New(prometheus.DefaultRegisterer, "bookcache"),
//	)
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cat, _ := bookcache.New(bookcache.Options{
//	    Store:    store,
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/bookcache"
)

// Hooks moves event delivery off the request path. Events are dropped, not
// queued, once the buffer is full.
type Hooks struct {
	inner   bookcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ bookcache.Hooks = (*Hooks)(nil)

func New(inner bookcache.Hooks, workers, qlen int) *Hooks {
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

// Close drains queued events and stops the workers. Call it once nothing can
// emit any more, i.e. after the catalog and the HTTP server are shut down.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports events lost to a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) CacheHit(k string)  { h.try(func() { h.inner.CacheHit(k) }) }
func (h *Hooks) CacheMiss(k string) { h.try(func() { h.inner.CacheMiss(k) }) }
func (h *Hooks) SetRejected(k string) {
	h.try(func() { h.inner.SetRejected(k) })
}
func (h *Hooks) EntryDiscarded(k, r string) {
	h.try(func() { h.inner.EntryDiscarded(k, r) })
}
func (h *Hooks) CacheUnavailable(op, k string, err error) {
	h.try(func() { h.inner.CacheUnavailable(op, k, err) })
}
func (h *Hooks) InvalidateFailed(k string, err error) {
	h.try(func() { h.inner.InvalidateFailed(k, err) })
}
