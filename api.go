package bookcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/bookcache/codec"
	pr "github.com/unkn0wn-root/bookcache/provider"
)

// Source says where a read was served from.
type Source string

const (
	FromCache Source = "cache"
	FromStore Source = "database"
)

// Catalog is the cache-aside API consumed by request handlers.
//
// Reads return the records plus the Source that served them. Errors are either
// ErrNotFound (wrapped) for an unknown book, or whatever the Store returned.
// Cache failures never surface here.
type Catalog interface {
	GetAllBooks(ctx context.Context) ([]Book, Source, error)
	GetReviews(ctx context.Context, bookID int64) ([]Review, Source, error)

	// AddBook invalidates books:all after the store commit.
	AddBook(ctx context.Context, in NewBook) (Book, error)
	// AddReview invalidates reviews:book:<bookID> after the store commit.
	AddReview(ctx context.Context, bookID int64, in NewReview) (Review, error)

	Close(ctx context.Context) error
}

// Store is the durable source of truth. ListReviews and CreateReview must
// return an error matching ErrNotFound when bookID does not exist.
type Store interface {
	ListBooks(ctx context.Context) ([]Book, error)
	CreateBook(ctx context.Context, in NewBook) (Book, error)
	ListReviews(ctx context.Context, bookID int64) ([]Review, error)
	CreateReview(ctx context.Context, bookID int64, in NewReview) (Review, error)
}

// Options tune the catalog. Only Store is required; a nil Provider runs the
// catalog store-only.
type Options struct {
	// Required
	Store Store

	Provider    pr.Provider
	BookCodec   c.Codec[[]Book]   // nil => JSON
	ReviewCodec c.Codec[[]Review] // nil => JSON

	Logger    Logger           // if nil, NopLogger is used
	Hooks     Hooks            // if nil, NopHooks is used
	TTL       time.Duration    // both key families; 0 => 30s
	OpTimeout time.Duration    // every cache call; 0 => 250ms
	Disabled  bool             // default false (enabled)
	Clock     func() time.Time // nil => time.Now
}

func New(opts Options) (Catalog, error) {
	return newCatalog(opts)
}
