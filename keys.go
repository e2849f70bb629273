package bookcache

import (
	"strconv"
	"strings"
)

const (
	booksKey         = "books:all"
	reviewsKeyPrefix = "reviews:book:"
)

// BooksKey is the cache key of the full book list.
func BooksKey() string { return booksKey }

// ReviewsKey is the cache key of one book's review list: the decimal id with
// no padding or separators.
func ReviewsKey(bookID int64) string {
	return reviewsKeyPrefix + strconv.FormatInt(bookID, 10)
}

// KeyFamily maps a cache key to its low-cardinality family name ("books",
// "reviews" or "other"), for metrics labels and log sampling.
func KeyFamily(key string) string {
	switch {
	case key == booksKey:
		return "books"
	case strings.HasPrefix(key, reviewsKeyPrefix) && len(key) > len(reviewsKeyPrefix):
		return "reviews"
	default:
		return "other"
	}
}
