package promhooks

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersByFamily(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg, "bookcache")
	require.NoError(t, err)

	h.CacheHit("books:all")
	h.CacheHit("books:all")
	h.CacheMiss("reviews:book:1")
	h.CacheMiss("reviews:book:2")
	h.CacheUnavailable("get", "books:all", errors.New("down"))
	h.EntryDiscarded("reviews:book:3", "corrupt")
	h.SetRejected("books:all")
	h.InvalidateFailed("reviews:book:9", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.lookups.WithLabelValues("books", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.lookups.WithLabelValues("reviews", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.unavailable.WithLabelValues("books", "get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.discarded.WithLabelValues("reviews", "corrupt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.rejected.WithLabelValues("books")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.invalidations.WithLabelValues("reviews")))

	// one series per family, not per book
	assert.Equal(t, 2, testutil.CollectAndCount(h.lookups))
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "bookcache")
	require.NoError(t, err)
	_, err = New(reg, "bookcache")
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(reg, "bookcache") })
}
