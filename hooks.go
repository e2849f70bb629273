package bookcache

// Hooks lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking.
// The catalog calls them on hot paths.
type Hooks interface {
	CacheHit(key string)
	CacheMiss(key string)

	// The backend could not serve a call and the catalog degraded.
	// op ∈ {"get", "set", "del", "probe"}
	CacheUnavailable(op, key string, err error)

	// Cached bytes were unusable and will be overwritten by the store result.
	// reason ∈ {"corrupt", "kind_mismatch", "expired", "value_decode"}
	EntryDiscarded(key, reason string)

	// Backend was reachable but declined a write.
	SetRejected(key string)

	// Delete after a committed write failed; the entry expires by TTL.
	InvalidateFailed(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheHit(string)                        {}
func (NopHooks) CacheMiss(string)                       {}
func (NopHooks) CacheUnavailable(string, string, error) {}
func (NopHooks) EntryDiscarded(string, string)          {}
func (NopHooks) SetRejected(string)                     {}
func (NopHooks) InvalidateFailed(string, error)         {}

// MultiHooks fans every event out to each of hs in order. Nil entries are skipped.
func MultiHooks(hs ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

type multiHooks []Hooks

func (m multiHooks) CacheHit(k string) {
	for _, h := range m {
		h.CacheHit(k)
	}
}

func (m multiHooks) CacheMiss(k string) {
	for _, h := range m {
		h.CacheMiss(k)
	}
}

func (m multiHooks) CacheUnavailable(op, k string, err error) {
	for _, h := range m {
		h.CacheUnavailable(op, k, err)
	}
}

func (m multiHooks) EntryDiscarded(k, reason string) {
	for _, h := range m {
		h.EntryDiscarded(k, reason)
	}
}

func (m multiHooks) SetRejected(k string) {
	for _, h := range m {
		h.SetRejected(k)
	}
}

func (m multiHooks) InvalidateFailed(k string, err error) {
	for _, h := range m {
		h.InvalidateFailed(k, err)
	}
}
