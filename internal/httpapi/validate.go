package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unkn0wn-root/bookcache"
)

type createBookRequest struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Author          string  `json:"author" validate:"required,max=100"`
	ISBN            *string `json:"isbn" validate:"omitempty,max=20"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=0,notfuture"`
}

func (r *createBookRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.ISBN = trimOptional(r.ISBN)
}

func (r *createBookRequest) toNewBook() bookcache.NewBook {
	return bookcache.NewBook{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
	}
}

type createReviewRequest struct {
	ReviewerName string  `json:"reviewer_name" validate:"required,max=100"`
	Rating       *int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText   *string `json:"review_text"`
}

func (r *createReviewRequest) normalize() {
	r.ReviewerName = strings.TrimSpace(r.ReviewerName)
	r.ReviewText = trimOptional(r.ReviewText)
}

func (r *createReviewRequest) toNewReview() bookcache.NewReview {
	return bookcache.NewReview{
		ReviewerName: r.ReviewerName,
		Rating:       *r.Rating,
		ReviewText:   r.ReviewText,
	}
}

// trimOptional maps blank strings to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Validator wraps validator/v10 with JSON field names and readable messages.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	// Use JSON tag names in error messages
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// publication year may be at most next year
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(v.now().UTC().Year()+1)
	})
	return v
}

// ValidationError is a rejected request body. Message is safe to return.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Struct validates i and reports the first failing field.
func (v *Validator) Struct(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	fe := ves[0]
	return &ValidationError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch {
	case field == "rating" && fe.Tag() != "required":
		return "Rating must be between 1 and 5"
	case fe.Tag() == "required":
		return fmt.Sprintf("'%s' is required and cannot be empty", field)
	case fe.Tag() == "max":
		return fmt.Sprintf("'%s' must be at most %s characters", field, fe.Param())
	case fe.Tag() == "gte", fe.Tag() == "notfuture":
		return "Invalid publication year"
	default:
		return fmt.Sprintf("'%s' failed %s validation", field, fe.Tag())
	}
}
