package bunstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bookcache"
)

type recLogger struct {
	bookcache.NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recLogger) Warn(msg string, _ bookcache.Fields) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

// stepClock advances one second per call so created_at is strictly ordered.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T, clock func() time.Time, log bookcache.Logger) *Store {
	t.Helper()
	s, err := Open(Config{
		Driver: DriverSQLite,
		DSN:    "file::memory:?_pragma=foreign_keys(1)",
		Logger: log,
		Clock:  clock,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t, nil, nil)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestBooksRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, stepClock(), nil)

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)

	b1, err := s.CreateBook(ctx, bookcache.NewBook{
		Title: "1984", Author: "George Orwell",
		ISBN: strp("978-0-452-28423-4"), PublicationYear: intp(1949),
	})
	require.NoError(t, err)
	b2, err := s.CreateBook(ctx, bookcache.NewBook{Title: "Untitled", Author: "Anon"})
	require.NoError(t, err)
	assert.Greater(t, b2.ID, b1.ID)

	books, err = s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, b1.ID, books[0].ID)
	assert.Equal(t, "978-0-452-28423-4", *books[0].ISBN)
	assert.Equal(t, 1949, *books[0].PublicationYear)
	assert.True(t, b1.CreatedAt.Equal(books[0].CreatedAt))
	assert.Nil(t, books[1].ISBN)
	assert.Nil(t, books[1].PublicationYear)
}

func TestDuplicateISBNIsConflict(t *testing.T) {
	ctx := context.Background()
	log := &recLogger{}
	s := newTestStore(t, nil, log)

	_, err := s.CreateBook(ctx, bookcache.NewBook{Title: "A", Author: "X", ISBN: strp("111")})
	require.NoError(t, err)
	_, err = s.CreateBook(ctx, bookcache.NewBook{Title: "B", Author: "Y", ISBN: strp("111")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bookcache.ErrConflict), "err=%v", err)
	var se *bookcache.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "create book", se.Op)
	assert.NotEmpty(t, log.warns, "failed query should be logged")

	// absent ISBNs never collide
	_, err = s.CreateBook(ctx, bookcache.NewBook{Title: "C", Author: "Z"})
	require.NoError(t, err)
	_, err = s.CreateBook(ctx, bookcache.NewBook{Title: "D", Author: "Z"})
	require.NoError(t, err)
}

func TestReviewsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, stepClock(), nil)
	b, err := s.CreateBook(ctx, bookcache.NewBook{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	other, err := s.CreateBook(ctx, bookcache.NewBook{Title: "Emma", Author: "Jane Austen"})
	require.NoError(t, err)

	r1, err := s.CreateReview(ctx, b.ID, bookcache.NewReview{ReviewerName: "Ann", Rating: 5, ReviewText: strp("Great")})
	require.NoError(t, err)
	r2, err := s.CreateReview(ctx, b.ID, bookcache.NewReview{ReviewerName: "Bob", Rating: 2})
	require.NoError(t, err)
	_, err = s.CreateReview(ctx, other.ID, bookcache.NewReview{ReviewerName: "Cat", Rating: 4})
	require.NoError(t, err)

	rs, err := s.ListReviews(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, r2.ID, rs[0].ID)
	assert.Equal(t, r1.ID, rs[1].ID)
	assert.Equal(t, b.ID, rs[1].BookID)
	assert.Equal(t, "Great", *rs[1].ReviewText)
	assert.Nil(t, rs[0].ReviewText)
}

func TestReviewsTieBreakByID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, func() time.Time { return fixed }, nil)
	b, err := s.CreateBook(ctx, bookcache.NewBook{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	var ids []int64
	for _, name := range []string{"Ann", "Bob", "Cat"} {
		r, err := s.CreateReview(ctx, b.ID, bookcache.NewReview{ReviewerName: name, Rating: 3})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	rs, err := s.ListReviews(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{rs[0].ID, rs[1].ID, rs[2].ID})
}

func TestUnknownBook(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil, nil)

	_, err := s.ListReviews(ctx, 999)
	assert.ErrorIs(t, err, bookcache.ErrNotFound)

	_, err = s.CreateReview(ctx, 999, bookcache.NewReview{ReviewerName: "Ann", Rating: 5})
	assert.ErrorIs(t, err, bookcache.ErrNotFound)
}

func TestEmptyReviewsIsEmptyList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil, nil)
	b, err := s.CreateBook(ctx, bookcache.NewBook{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	rs, err := s.ListReviews(ctx, b.ID)
	require.NoError(t, err)
	assert.NotNil(t, rs)
	assert.Empty(t, rs)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
}

func TestStoreErrorClassification(t *testing.T) {
	assert.Nil(t, storeErr("noop", nil))

	err := storeErr("list books", errors.New("disk I/O error"))
	var se *bookcache.StoreError
	require.True(t, errors.As(err, &se))
	assert.False(t, errors.Is(err, bookcache.ErrConflict))
}
