// Package app wires configuration into a running catalog service:
// config -> logger -> store -> provider (+breaker) -> hooks -> catalog -> router.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sony/gobreaker"

	"github.com/unkn0wn-root/bookcache"
	"github.com/unkn0wn-root/bookcache/codec"
	asynchook "github.com/unkn0wn-root/bookcache/hooks/async"
	promhooks "github.com/unkn0wn-root/bookcache/hooks/prom"
	"github.com/unkn0wn-root/bookcache/internal/config"
	"github.com/unkn0wn-root/bookcache/internal/httpapi"
	"github.com/unkn0wn-root/bookcache/internal/logging"
	pr "github.com/unkn0wn-root/bookcache/provider"
	"github.com/unkn0wn-root/bookcache/provider/bigcache"
	"github.com/unkn0wn-root/bookcache/provider/breaker"
	"github.com/unkn0wn-root/bookcache/provider/redis"
	"github.com/unkn0wn-root/bookcache/provider/ristretto"
	"github.com/unkn0wn-root/bookcache/sloghooks"
	"github.com/unkn0wn-root/bookcache/store/bunstore"
)

type App struct {
	Config   *config.Config
	Logs     *logging.Loggers
	Store    *bunstore.Store
	Provider pr.Provider // nil when caching is off
	Catalog  bookcache.Catalog
	Registry *prometheus.Registry
	Handler  http.Handler

	hooks *asynchook.Hooks
}

// Build constructs every component. On error, anything already opened is closed.
func Build(ctx context.Context, cfg *config.Config, logOut io.Writer) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if a.Logs, err = logging.Build(cfg.Log, logOut); err != nil {
		return nil, err
	}
	log := a.Logs.Logger

	driver, dsn, err := cfg.Database.DriverDSN()
	if err != nil {
		return nil, err
	}
	if a.Store, err = bunstore.Open(bunstore.Config{
		Driver:       driver,
		DSN:          dsn,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		SlowQuery:    cfg.Database.SlowQuery,
		Logger:       log,
	}); err != nil {
		return nil, err
	}
	if err = a.Store.Migrate(ctx); err != nil {
		return nil, err
	}

	if a.Provider, err = newProvider(cfg.Cache, log); err != nil {
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	var (
		prom        bookcache.Hooks
		httpMetrics *httpapi.Metrics
	)
	if cfg.Metrics.Enabled {
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if prom, err = promhooks.New(a.Registry, cfg.Metrics.Namespace); err != nil {
			return nil, err
		}
		if httpMetrics, err = httpapi.NewMetrics(a.Registry, cfg.Metrics.Namespace); err != nil {
			return nil, err
		}
	}
	a.hooks = asynchook.New(bookcache.MultiHooks(
		sloghooks.New(a.Logs.Slog, sloghooks.Options{HitEvery: 100, MissEvery: 10, DiscardEvery: 1}),
		prom,
	), 1, 1024)

	bookCodec, err := codec.ByName[[]bookcache.Book](cfg.Cache.Codec, cfg.Cache.MaxEntryBytes)
	if err != nil {
		return nil, err
	}
	reviewCodec, err := codec.ByName[[]bookcache.Review](cfg.Cache.Codec, cfg.Cache.MaxEntryBytes)
	if err != nil {
		return nil, err
	}

	if a.Catalog, err = bookcache.New(bookcache.Options{
		Store:       a.Store,
		Provider:    a.Provider,
		BookCodec:   bookCodec,
		ReviewCodec: reviewCodec,
		Logger:      log,
		Hooks:       a.hooks,
		TTL:         cfg.Cache.TTL,
		OpTimeout:   cfg.Cache.OpTimeout,
	}); err != nil {
		return nil, err
	}

	deps := httpapi.Deps{
		Catalog:     a.Catalog,
		Logger:      log,
		DB:          a.Store,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}
	if a.Provider != nil {
		deps.Cache = a.Provider
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = httpMetrics
		deps.Gatherer = a.Registry
	}
	a.Handler = httpapi.NewRouter(deps)

	log.Info("catalog ready", bookcache.Fields{
		"db_driver":    driver,
		"cache_driver": cfg.Cache.Driver,
		"codec":        cfg.Cache.Codec,
		"ttl":          cfg.Cache.TTL,
	})
	return a, nil
}

func newProvider(cfg config.CacheConfig, log bookcache.Logger) (pr.Provider, error) {
	var (
		p   pr.Provider
		err error
	)
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		p, err = redis.NewFromURL(cfg.RedisURL)
	case config.CacheRistretto:
		rc := ristretto.DefaultConfig()
		if cfg.MaxCostBytes > 0 {
			rc.MaxCost = cfg.MaxCostBytes
		}
		p, err = ristretto.New(rc)
	case config.CacheBigcache:
		p, err = bigcache.New(bigcache.Config{LifeWindow: cfg.TTL})
	default:
		return nil, fmt.Errorf("app: unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("app: %s provider: %w", cfg.Driver, err)
	}
	// In-process backends cannot be unreachable, so only the network one trips.
	if cfg.Driver != config.CacheRedis || !cfg.Breaker.Enabled {
		return p, nil
	}
	bc := breaker.DefaultConfig()
	bc.Name = cfg.Driver
	bc.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
	if cfg.Breaker.OpenTimeout > 0 {
		bc.Timeout = cfg.Breaker.OpenTimeout
	}
	bc.OnStateChange = func(name string, from, to gobreaker.State) {
		f := bookcache.Fields{"breaker": name, "from": from.String(), "to": to.String()}
		if to == gobreaker.StateOpen {
			log.Warn("cache circuit opened; serving from store", f)
			return
		}
		log.Info("cache circuit state changed", f)
	}
	return breaker.New(p, bc), nil
}

// Close releases everything Build opened. Safe on a partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Catalog != nil {
		// closes the provider too
		errs = append(errs, a.Catalog.Close(ctx))
	} else if a.Provider != nil {
		errs = append(errs, a.Provider.Close(ctx))
	}
	if a.hooks != nil {
		a.hooks.Close()
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Logs != nil {
		_ = a.Logs.Sync()
	}
	return errors.Join(errs...)
}
