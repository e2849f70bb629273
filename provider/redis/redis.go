package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/bookcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis is the shared cache backend used when several service instances run
// behind one cache.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// NewFromURL parses a redis:// or rediss:// URL and returns a provider that owns
// its client.
func NewFromURL(rawURL string) (*Redis, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return New(Config{Client: goredis.NewClient(opts), CloseClient: true})
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, pr.Outcome, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, pr.Miss, nil
	}
	if err != nil {
		return nil, pr.Unreachable, err // transport/server error
	}
	return b, pr.OK, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (pr.Outcome, error) {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	return pr.Fail(p.rdb.Set(ctx, key, value, ttl).Err())
}

// Del maps to DEL, which reports 0 removed keys for an absent key rather than
// an error.
func (p *Redis) Del(ctx context.Context, key string) (pr.Outcome, error) {
	return pr.Fail(p.rdb.Del(ctx, key).Err())
}

func (p *Redis) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
