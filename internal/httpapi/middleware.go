package httpapi

import (
	"mime"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/unkn0wn-root/bookcache"
)

func requestID(r *http.Request) string {
	return chimiddleware.GetReqID(r.Context())
}

// requestLogger writes one access line per request through the catalog Logger.
func requestLogger(log bookcache.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				f := bookcache.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     status,
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start),
					"request_id": requestID(r),
				}
				if status >= http.StatusInternalServerError {
					log.Warn("request", f)
					return
				}
				log.Info("request", f)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// recoverer turns a handler panic into a logged 500.
func recoverer(log bookcache.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("handler panic", bookcache.Fields{
						"panic":      rec,
						"path":       r.URL.Path,
						"request_id": requestID(r),
					})
					writeError(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requireJSON rejects bodies that are not declared as application/json.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType,
				"Unsupported Media Type. Content-Type must be application/json", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
