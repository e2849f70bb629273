// Package httpapi exposes the catalog over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unkn0wn-root/bookcache"
)

// Pinger is anything /health can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Catalog bookcache.Catalog
	Logger  bookcache.Logger

	// Health probes. A nil Cache reports "disabled".
	DB    Pinger
	Cache Pinger

	// Optional; both nil disables request metrics and /metrics.
	Metrics  *Metrics
	Gatherer prometheus.Gatherer

	CORSOrigins []string
	Clock       func() time.Time
}

type server struct {
	cat      bookcache.Catalog
	log      bookcache.Logger
	db       Pinger
	cache    Pinger
	validate *Validator
	now      func() time.Time
}

// NewRouter builds the handler tree.
func NewRouter(d Deps) http.Handler {
	s := &server{
		cat:      d.Catalog,
		log:      d.Logger,
		db:       d.DB,
		cache:    d.Cache,
		validate: NewValidator(),
		now:      d.Clock,
	}
	if s.log == nil {
		s.log = bookcache.NopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestLogger(s.log))
	router.Use(recoverer(s.log))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware)
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Resource not found", "The requested URL was not found on the server.")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" is not supported for "+r.URL.Path)
	})

	router.Get("/health", s.health)
	if d.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/books", func(r chi.Router) {
		r.Get("/", s.listBooks)
		r.With(requireJSON).Post("/", s.createBook)
		r.Get("/{bookID}/reviews", s.listReviews)
		r.With(requireJSON).Post("/{bookID}/reviews", s.createReview)
	})

	return router
}
