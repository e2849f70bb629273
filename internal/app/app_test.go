package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bookcache/internal/config"
	"github.com/unkn0wn-root/bookcache/provider/breaker"
)

func testConfig(driver string) *config.Config {
	cfg := config.Default()
	cfg.Database.URL = "sqlite://"
	cfg.Cache.Driver = driver
	cfg.Log.Level = "error"
	return cfg
}

func build(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func getSource(t *testing.T, h http.Handler, path string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Source
}

func TestInProcessDrivers(t *testing.T) {
	for _, driver := range []string{config.CacheRistretto, config.CacheBigcache} {
		for _, codec := range []string{"json", "msgpack", "cbor"} {
			t.Run(driver+"/"+codec, func(t *testing.T) {
				cfg := testConfig(driver)
				cfg.Cache.Codec = codec
				a := build(t, cfg)

				assert.Equal(t, "database", getSource(t, a.Handler, "/books"))
				assert.Equal(t, "cache", getSource(t, a.Handler, "/books"))
			})
		}
	}
}

func TestCacheDisabled(t *testing.T) {
	a := build(t, testConfig(config.CacheNone))
	assert.Nil(t, a.Provider)
	assert.Equal(t, "database", getSource(t, a.Handler, "/books"))
	assert.Equal(t, "database", getSource(t, a.Handler, "/books"))

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, rec.Body.String(), `"cache":"disabled"`)
}

// With redis unreachable every request is still served from the store.
func TestRedisDownDegrades(t *testing.T) {
	cfg := testConfig(config.CacheRedis)
	cfg.Cache.RedisURL = "redis://127.0.0.1:1/0?dial_timeout=50ms&max_retries=-1"
	cfg.Cache.Breaker.ConsecutiveFailures = 2
	a := build(t, cfg)

	_, ok := a.Provider.(*breaker.Provider)
	require.True(t, ok, "redis provider should sit behind the breaker")

	for i := 0; i < 4; i++ {
		assert.Equal(t, "database", getSource(t, a.Handler, "/books"))
	}

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"disconnected"`)
}

func TestMetricsExposed(t *testing.T) {
	a := build(t, testConfig(config.CacheRistretto))
	getSource(t, a.Handler, "/books")
	getSource(t, a.Handler, "/books")

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookcache_http_requests_total")
}

func TestBuildFailsOnBadDatabase(t *testing.T) {
	cfg := testConfig(config.CacheNone)
	cfg.Database.URL = "mysql://nope"
	_, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
}
