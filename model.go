package bookcache

import "time"

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn"`
	PublicationYear *int      `json:"publication_year"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewBook carries the fields of a book to create. Fields are expected to be
// validated and trimmed by the caller.
type NewBook struct {
	Title           string
	Author          string
	ISBN            *string
	PublicationYear *int
}

type Review struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"book_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	ReviewText   *string   `json:"review_text"`
	CreatedAt    time.Time `json:"created_at"`
}

type NewReview struct {
	ReviewerName string
	Rating       int
	ReviewText   *string
}
