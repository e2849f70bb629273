package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/unkn0wn-root/bookcache"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, title, msg string) {
	writeJSON(w, status, errorBody{Error: title, Message: msg})
}

// writeCatalogError maps catalog and store errors to responses. Anything it
// does not recognise is logged and hidden behind a generic 500.
func (s *server) writeCatalogError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, bookcache.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found", capitalize(err.Error()))
	case errors.Is(err, bookcache.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict", "A book with this ISBN already exists")
	default:
		s.log.Error(op+" failed", bookcache.Fields{
			"err":        err,
			"path":       r.URL.Path,
			"request_id": requestID(r),
		})
		writeError(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
