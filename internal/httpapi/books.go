package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unkn0wn-root/bookcache"
)

const maxBodyBytes = 1 << 20

type booksResponse struct {
	Books  []bookcache.Book `json:"books"`
	Source bookcache.Source `json:"source"`
}

type reviewsResponse struct {
	BookID    int64              `json:"book_id"`
	BookTitle string             `json:"book_title"`
	Reviews   []bookcache.Review `json:"reviews"`
	Source    bookcache.Source   `json:"source"`
}

type bookCreatedResponse struct {
	Message string         `json:"message"`
	Book    bookcache.Book `json:"book"`
}

type reviewCreatedResponse struct {
	Message string           `json:"message"`
	Review  bookcache.Review `json:"review"`
}

func (s *server) listBooks(w http.ResponseWriter, r *http.Request) {
	books, src, err := s.cat.GetAllBooks(r.Context())
	if err != nil {
		s.writeCatalogError(w, r, "list books", err)
		return
	}
	if books == nil {
		books = []bookcache.Book{}
	}
	writeJSON(w, http.StatusOK, booksResponse{Books: books, Source: src})
}

func (s *server) createBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.normalize()
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request", err.Error())
		return
	}

	b, err := s.cat.AddBook(r.Context(), req.toNewBook())
	if err != nil {
		s.writeCatalogError(w, r, "add book", err)
		return
	}
	writeJSON(w, http.StatusCreated, bookCreatedResponse{Message: "Book added successfully", Book: b})
}

func (s *server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	reviews, src, err := s.cat.GetReviews(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, r, "list reviews", err)
		return
	}
	if reviews == nil {
		reviews = []bookcache.Review{}
	}
	title, err := s.bookTitle(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, r, "list reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, reviewsResponse{BookID: id, BookTitle: title, Reviews: reviews, Source: src})
}

// bookTitle reads the title from the cached book list, so a reviews request
// costs no extra store query once books:all is warm. Source reports the
// reviews read only.
func (s *server) bookTitle(ctx context.Context, id int64) (string, error) {
	books, _, err := s.cat.GetAllBooks(ctx)
	if err != nil {
		return "", err
	}
	for _, b := range books {
		if b.ID == id {
			return b.Title, nil
		}
	}
	return "", bookcache.NotFound(id)
}

func (s *server) createReview(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	var req createReviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.normalize()
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request", err.Error())
		return
	}

	rv, err := s.cat.AddReview(r.Context(), id, req.toNewReview())
	if err != nil {
		s.writeCatalogError(w, r, "add review", err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewCreatedResponse{Message: "Review added successfully", Review: rv})
}

// bookID parses {bookID}; anything but a positive integer is an unknown route.
func bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "bookID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Resource not found", fmt.Sprintf("Book with id %s not found", raw))
		return 0, false
	}
	return id, true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid JSON body"
		var te *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			msg = "No JSON data provided"
		case errors.As(err, &te):
			msg = fmt.Sprintf("'%s' has the wrong type", te.Field)
		}
		writeError(w, http.StatusBadRequest, "Bad request", msg)
		return false
	}
	return true
}
