package bookcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/bookcache/codec"
	"github.com/unkn0wn-root/bookcache/internal/wire"
	pr "github.com/unkn0wn-root/bookcache/provider"
)

const (
	DefaultTTL       = 30 * time.Second
	DefaultOpTimeout = 250 * time.Millisecond
)

type catalog struct {
	store    Store
	provider pr.Provider
	books    c.Codec[[]Book]
	reviews  c.Codec[[]Review]
	log      Logger
	hooks    Hooks

	enabled   bool
	ttl       time.Duration
	opTimeout time.Duration
	now       func() time.Time
}

func newCatalog(opts Options) (*catalog, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bookcache: store is required")
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("bookcache: negative ttl %v", opts.TTL)
	}
	if opts.OpTimeout < 0 {
		return nil, fmt.Errorf("bookcache: negative op timeout %v", opts.OpTimeout)
	}

	cat := &catalog{
		store:    opts.Store,
		provider: opts.Provider,
		enabled:  !opts.Disabled && opts.Provider != nil,
		now:      opts.Clock,
	}

	// defaults
	cat.books = coalesce[c.Codec[[]Book]](opts.BookCodec, c.JSON[[]Book]{})
	cat.reviews = coalesce[c.Codec[[]Review]](opts.ReviewCodec, c.JSON[[]Review]{})
	cat.log = coalesce[Logger](opts.Logger, NopLogger{})
	cat.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cat.ttl = coalesce(opts.TTL, DefaultTTL)
	cat.opTimeout = coalesce(opts.OpTimeout, DefaultOpTimeout)
	if cat.now == nil {
		cat.now = time.Now
	}

	return cat, nil
}

func (cat *catalog) Close(ctx context.Context) error {
	if cat.provider != nil {
		return cat.provider.Close(ctx)
	}
	return nil
}

func (cat *catalog) GetAllBooks(ctx context.Context) ([]Book, Source, error) {
	return readThrough(ctx, cat, BooksKey(), wire.KindBooks, cat.books, cat.store.ListBooks)
}

func (cat *catalog) GetReviews(ctx context.Context, bookID int64) ([]Review, Source, error) {
	return readThrough(ctx, cat, ReviewsKey(bookID), wire.KindReviews, cat.reviews,
		func(ctx context.Context) ([]Review, error) {
			return cat.store.ListReviews(ctx, bookID)
		})
}

func (cat *catalog) AddBook(ctx context.Context, in NewBook) (Book, error) {
	b, err := cat.store.CreateBook(ctx, in)
	if err != nil {
		return Book{}, err
	}
	cat.invalidate(ctx, BooksKey())
	return b, nil
}

// AddReview leaves books:all alone: a review changes no book field.
func (cat *catalog) AddReview(ctx context.Context, bookID int64, in NewReview) (Review, error) {
	r, err := cat.store.CreateReview(ctx, bookID, in)
	if err != nil {
		return Review{}, err
	}
	cat.invalidate(ctx, ReviewsKey(bookID))
	return r, nil
}

// readThrough serves key from the cache, or from fetch on any kind of miss.
// A failed fetch is returned as is and nothing is cached for it.
func readThrough[V any](
	ctx context.Context,
	cat *catalog,
	key string,
	kind wire.Kind,
	codec c.Codec[V],
	fetch func(context.Context) (V, error),
) (V, Source, error) {
	if !cat.enabled {
		v, err := fetch(ctx)
		return v, FromStore, err
	}

	v, hit, reachable := lookup(ctx, cat, key, kind, codec)
	if hit {
		return v, FromCache, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, FromStore, err
	}

	// The cache just failed us; only write back if it answers a fresh probe.
	if !reachable && !cat.probe(ctx, key) {
		return v, FromStore, nil
	}
	populate(ctx, cat, key, kind, codec, v)
	return v, FromStore, nil
}

// lookup reports hit=true only for an intact, unexpired entry of the right
// kind. reachable=false means the backend itself failed.
func lookup[V any](ctx context.Context, cat *catalog, key string, kind wire.Kind, codec c.Codec[V]) (v V, hit, reachable bool) {
	opCtx, cancel := cat.opContext(ctx)
	raw, out, err := cat.provider.Get(opCtx, key)
	cancel()

	switch out {
	case pr.OK:
	case pr.Unreachable:
		cat.degraded("get", key, err)
		return v, false, false
	default:
		cat.hooks.CacheMiss(key)
		return v, false, true
	}

	exp, payload, err := wire.Decode(raw, kind)
	if err != nil {
		reason := "corrupt"
		if errors.Is(err, wire.ErrKind) {
			reason = "kind_mismatch"
		}
		cat.discard(key, reason, err)
		return v, false, true
	}
	if !cat.now().Before(exp) {
		cat.discard(key, "expired", nil)
		return v, false, true
	}

	v, err = codec.Decode(payload)
	if err != nil {
		cat.discard(key, "value_decode", err)
		var zero V
		return zero, false, true
	}
	cat.hooks.CacheHit(key)
	return v, true, true
}

func populate[V any](ctx context.Context, cat *catalog, key string, kind wire.Kind, codec c.Codec[V], v V) {
	payload, err := codec.Encode(v)
	if err != nil {
		cat.log.Error("encode failed; entry not cached", Fields{"key": key, "err": err})
		return
	}
	entry := wire.Encode(kind, cat.now().Add(cat.ttl), payload)

	opCtx, cancel := cat.opContext(ctx)
	defer cancel()
	out, err := cat.provider.Set(opCtx, key, entry, cat.ttl)
	switch out {
	case pr.Unreachable:
		cat.degraded("set", key, err)
	case pr.Rejected:
		cat.hooks.SetRejected(key)
		cat.log.Debug("set rejected by provider (pressure)", Fields{"key": key})
	default:
		cat.log.Debug("populated", Fields{"key": key, "ttl": cat.ttl, "bytes": len(entry)})
	}
}

// invalidate runs on a context detached from the request: once the store has
// committed, a client hanging up must not skip the delete.
func (cat *catalog) invalidate(ctx context.Context, key string) {
	if !cat.enabled {
		return
	}
	opCtx, cancel := cat.opContext(context.WithoutCancel(ctx))
	defer cancel()

	out, err := cat.provider.Del(opCtx, key)
	if out == pr.Unreachable {
		cat.hooks.InvalidateFailed(key, err)
		cat.log.Warn("invalidate failed; entry expires by ttl", Fields{"key": key, "ttl": cat.ttl, "err": err})
		return
	}
	cat.log.Debug("invalidated", Fields{"key": key})
}

func (cat *catalog) probe(ctx context.Context, key string) bool {
	opCtx, cancel := cat.opContext(ctx)
	defer cancel()
	if err := cat.provider.Ping(opCtx); err != nil {
		cat.hooks.CacheUnavailable("probe", key, err)
		cat.log.Debug("probe failed; skipping populate", Fields{"key": key, "err": err})
		return false
	}
	return true
}

func (cat *catalog) degraded(op, key string, err error) {
	cat.hooks.CacheUnavailable(op, key, err)
	cat.log.Warn("cache unavailable; degraded to store", Fields{"op": op, "key": key, "err": err})
}

func (cat *catalog) discard(key, reason string, err error) {
	cat.hooks.EntryDiscarded(key, reason)
	cat.hooks.CacheMiss(key)
	f := Fields{"key": key, "reason": reason}
	if err != nil {
		f["err"] = err
	}
	cat.log.Debug("discarded cached entry", f)
}

func (cat *catalog) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, cat.opTimeout)
}
