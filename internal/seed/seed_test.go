package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bookcache"
	"github.com/unkn0wn-root/bookcache/provider/ristretto"
	"github.com/unkn0wn-root/bookcache/store/bunstore"
)

func newCatalog(t *testing.T) bookcache.Catalog {
	t.Helper()
	ctx := context.Background()
	store, err := bunstore.Open(bunstore.Config{Driver: bunstore.DriverSQLite, DSN: "file::memory:?_pragma=foreign_keys(1)"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	p, err := ristretto.New(ristretto.DefaultConfig())
	require.NoError(t, err)
	cat, err := bookcache.New(bookcache.Options{Store: store, Provider: p})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cat.Close(ctx)
		_ = store.Close()
	})
	return cat
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	// warm the cache so the seeder has something to invalidate
	_, _, err := cat.GetAllBooks(ctx)
	require.NoError(t, err)

	sum, err := Run(ctx, cat, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.BooksAdded)
	assert.Equal(t, 10, sum.ReviewsAdded)
	require.Len(t, sum.Books, 5)

	counts := []int{}
	for _, b := range sum.Books {
		counts = append(counts, b.Reviews)
	}
	assert.Equal(t, []int{3, 3, 3, 1, 0}, counts)
	assert.InDelta(t, 14.0/3.0, sum.Books[0].AvgRating, 1e-9)
	assert.Zero(t, sum.Books[4].AvgRating)
}

func TestRunTwiceSkipsExistingBooks(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	_, err := Run(ctx, cat, nil)
	require.NoError(t, err)
	sum, err := Run(ctx, cat, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.BooksAdded)
	assert.Equal(t, 5, sum.BooksSkipped)
	assert.Equal(t, 0, sum.ReviewsAdded)
	assert.Len(t, sum.Books, 5)
}
