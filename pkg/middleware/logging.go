package middleware

import (
	"net/http"
	"time"

	"github.com/NewMtnGoat/new-status/pkg/logger"
)

// LoggingMiddleware logs every request with method, path and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.WithField("duration", time.Since(start).String()).
			Infof("%s %s", r.Method, r.URL.Path)
	})
}
