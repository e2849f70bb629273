// Package breaker wraps a provider.Provider with a circuit breaker so that a
// cache that keeps failing is skipped outright instead of costing every request
// a timeout. While the circuit is open all calls report provider.Unreachable
// without touching the wrapped backend.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	pr "github.com/unkn0wn-root/bookcache/provider"
)

type Config struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears counts while closed; 0 never clears.
	Interval time.Duration
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the circuit.
	ConsecutiveFailures uint32
	// OnStateChange is called from the breaker on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

func DefaultConfig() Config {
	return Config{
		Name:                "cache",
		MaxRequests:         1,
		Timeout:             10 * time.Second,
		ConsecutiveFailures: 5,
	}
}

type Provider struct {
	inner pr.Provider
	cb    *gobreaker.CircuitBreaker
}

var _ pr.Provider = (*Provider)(nil)

func New(inner pr.Provider, cfg Config) *Provider {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultConfig().ConsecutiveFailures
	}
	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cfg.OnStateChange,
		// A caller giving up is not evidence against the cache.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &Provider{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// State reports the current circuit state.
func (p *Provider) State() gobreaker.State { return p.cb.State() }

type getResult struct {
	b   []byte
	out pr.Outcome
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, pr.Outcome, error) {
	res, err := p.cb.Execute(func() (any, error) {
		b, out, err := p.inner.Get(ctx, key)
		return getResult{b: b, out: out}, err
	})
	if err != nil {
		return nil, pr.Unreachable, err
	}
	r := res.(getResult)
	return r.b, r.out, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (pr.Outcome, error) {
	return p.run(func() (pr.Outcome, error) { return p.inner.Set(ctx, key, value, ttl) })
}

func (p *Provider) Del(ctx context.Context, key string) (pr.Outcome, error) {
	return p.run(func() (pr.Outcome, error) { return p.inner.Del(ctx, key) })
}

// Ping goes through the breaker too: a successful probe while half-open closes
// the circuit.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.cb.Execute(func() (any, error) {
		return nil, p.inner.Ping(ctx)
	})
	return err
}

func (p *Provider) Close(ctx context.Context) error {
	return p.inner.Close(ctx)
}

func (p *Provider) run(fn func() (pr.Outcome, error)) (pr.Outcome, error) {
	res, err := p.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return pr.Unreachable, err
	}
	return res.(pr.Outcome), nil
}
