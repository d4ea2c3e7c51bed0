package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/pkg/ctxutil"
)

// RequestIDHeader is read from and echoed to clients.
const RequestIDHeader = "X-Request-Id"

// RequestID reuses the incoming X-Request-Id or assigns a new UUID, and
// stores it in the request context for log correlation.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
		})
	}
}
