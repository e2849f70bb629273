// Package seed loads a small demo catalog through the Catalog API, so every
// write invalidates the cache the same way a client write would.
package seed

import (
	"context"
	"errors"

	"github.com/unkn0wn-root/bookcache"
)

type sampleReview struct {
	name   string
	rating int
	text   string
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

var sampleBooks = []bookcache.NewBook{
	{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: strp("978-0-7432-7356-5"), PublicationYear: intp(1925)},
	{Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: strp("978-0-06-112008-4"), PublicationYear: intp(1960)},
	{Title: "1984", Author: "George Orwell", ISBN: strp("978-0-452-28423-4"), PublicationYear: intp(1949)},
	{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: strp("978-0-14-143951-8"), PublicationYear: intp(1813)},
	{Title: "The Catcher in the Rye", Author: "J.D. Salinger", ISBN: strp("978-0-316-76948-0"), PublicationYear: intp(1951)},
}

var sampleReviews = []sampleReview{
	{"Alice Johnson", 5, "Absolutely magnificent! A timeless classic that captures the essence of the American Dream."},
	{"Bob Smith", 4, "Great book, very engaging story. The symbolism is profound."},
	{"Carol Davis", 5, "One of the best books I've ever read. Highly recommend!"},
	{"David Wilson", 3, "Good book but a bit slow in places. Still worth reading."},
	{"Emma Brown", 4, "Beautiful prose and compelling characters. A must-read."},
	{"Frank Miller", 5, "Incredible storytelling. Every page is a masterpiece."},
	{"Grace Lee", 2, "Not my cup of tea. Found it hard to connect with the characters."},
	{"Henry Taylor", 4, "Well-written and thought-provoking. Great historical context."},
	{"Iris Anderson", 5, "Perfect blend of romance and social commentary."},
	{"Jack Thompson", 3, "Decent read but overhyped in my opinion."},
}

const reviewsPerBook = 3

type BookSummary struct {
	Title     string
	Author    string
	Reviews   int
	AvgRating float64
}

type Summary struct {
	BooksAdded   int
	BooksSkipped int // ISBN already present
	ReviewsAdded int
	Books        []BookSummary
}

// Run adds the demo books and hands out the sample reviews three per book
// until they run out, then reads the catalog back.
func Run(ctx context.Context, cat bookcache.Catalog, log bookcache.Logger) (Summary, error) {
	if log == nil {
		log = bookcache.NopLogger{}
	}
	var sum Summary

	var ids []int64
	for _, nb := range sampleBooks {
		b, err := cat.AddBook(ctx, nb)
		if errors.Is(err, bookcache.ErrConflict) {
			sum.BooksSkipped++
			log.Info("book already present", bookcache.Fields{"title": nb.Title})
			continue
		}
		if err != nil {
			return sum, err
		}
		sum.BooksAdded++
		ids = append(ids, b.ID)
		log.Info("added book", bookcache.Fields{"title": b.Title, "id": b.ID})
	}

	next := 0
	for _, id := range ids {
		for j := 0; j < reviewsPerBook && next < len(sampleReviews); j++ {
			sr := sampleReviews[next]
			next++
			if _, err := cat.AddReview(ctx, id, bookcache.NewReview{
				ReviewerName: sr.name,
				Rating:       sr.rating,
				ReviewText:   strp(sr.text),
			}); err != nil {
				return sum, err
			}
			sum.ReviewsAdded++
		}
	}

	books, _, err := cat.GetAllBooks(ctx)
	if err != nil {
		return sum, err
	}
	for _, b := range books {
		rs, _, err := cat.GetReviews(ctx, b.ID)
		if err != nil {
			return sum, err
		}
		bs := BookSummary{Title: b.Title, Author: b.Author, Reviews: len(rs)}
		if len(rs) > 0 {
			total := 0
			for _, r := range rs {
				total += r.Rating
			}
			bs.AvgRating = float64(total) / float64(len(rs))
		}
		sum.Books = append(sum.Books, bs)
	}
	return sum, nil
}
