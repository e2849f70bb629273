package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/bookcache/provider"
)

// Provider is an in-process backend. Entries are not shared between service
// instances, so it only fits single-instance deployments.
type Provider struct {
	c    *rc.Cache
	sync bool
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // bytes; each entry costs len(value)
	BufferItems int64
	Metrics     bool
	// SyncWrites blocks Set until the entry is visible to Get.
	SyncWrites bool
}

func DefaultConfig() Config {
	return Config{
		NumCounters: 1e5,
		MaxCost:     64 << 20,
		BufferItems: 64,
		SyncWrites:  true,
	}
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, sync: cfg.SyncWrites}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, pr.Outcome, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, pr.Miss, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, pr.Miss, nil
	}
	return b, pr.OK, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (pr.Outcome, error) {
	if ttl < 0 {
		ttl = 0
	}
	if !p.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return pr.Rejected, nil
	}
	if p.sync {
		p.c.Wait()
	}
	return pr.OK, nil
}

func (p *Provider) Del(_ context.Context, key string) (pr.Outcome, error) {
	p.c.Del(key)
	return pr.OK, nil
}

func (p *Provider) Ping(context.Context) error { return nil }

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Provider).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
