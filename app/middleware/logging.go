package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request. It must run after the session
// resolver so the user is known.
func RequestLogger(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := log.Fields{
				"method":      r.Method,
				"route":       routeTemplate(r),
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": float64(time.Since(start)) / float64(time.Millisecond),
			}
			if u := CurrentUser(r.Context()); u != nil {
				fields["user_id"] = u.ID
			}
			entry := logger.WithFields(fields)
			switch {
			case rec.status >= http.StatusInternalServerError:
				entry.Error("http.request")
			case rec.status >= http.StatusBadRequest:
				entry.Warn("http.request")
			default:
				entry.Info("http.request")
			}
		})
	}
}
