package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/bookcache/provider"
)

// Provider is an in-process backend over BigCache.
// BigCache has no per-entry TTL: every entry lives for LifeWindow, which should
// be set to the catalog TTL. The catalog also stamps expires_at into each entry,
// so a longer window never serves an entry past its TTL.
type Provider struct {
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache: life window must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, pr.Outcome, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, pr.Miss, nil
	}
	if err != nil {
		return nil, pr.Unreachable, err
	}
	return b, pr.OK, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ time.Duration) (pr.Outcome, error) {
	if err := p.c.Set(key, value); err != nil {
		// entry larger than a shard or hard size limit reached
		return pr.Rejected, nil
	}
	return pr.OK, nil
}

func (p *Provider) Del(_ context.Context, key string) (pr.Outcome, error) {
	err := p.c.Delete(key)
	if err == nil || errors.Is(err, bc.ErrEntryNotFound) {
		return pr.OK, nil
	}
	return pr.Unreachable, err
}

func (p *Provider) Ping(context.Context) error { return nil }

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
