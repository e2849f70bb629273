package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/unkn0wn-root/bookcache"
)

type bookRow struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Title           string    `bun:"title,notnull,type:varchar(200)"`
	Author          string    `bun:"author,notnull,type:varchar(100)"`
	ISBN            *string   `bun:"isbn,unique,type:varchar(20)"`
	PublicationYear *int      `bun:"publication_year"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

func (r *bookRow) toBook() bookcache.Book {
	return bookcache.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

type reviewRow struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID           int64     `bun:"id,pk,autoincrement"`
	BookID       int64     `bun:"book_id,notnull"`
	ReviewerName string    `bun:"reviewer_name,notnull,type:varchar(100)"`
	Rating       int       `bun:"rating,notnull"`
	ReviewText   *string   `bun:"review_text,type:text"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (r *reviewRow) toReview() bookcache.Review {
	return bookcache.Review{
		ID:           r.ID,
		BookID:       r.BookID,
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
		ReviewText:   r.ReviewText,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
