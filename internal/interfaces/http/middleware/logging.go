// Package middleware holds the HTTP middlewares shared across routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
)

// RequestObserver receives one observation per finished request.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// slowRequestThreshold marks requests worth a warning; the engine's queries
// are all in-memory, so anything this slow points at the survival model or a
// rebuild.
const slowRequestThreshold = 1 * time.Second

// RequestLogger logs every request and feeds the metrics observer.
func RequestLogger(log logging.Logger, observer RequestObserver) func(http.Handler) http.Handler {
	log = log.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("route", route),
				logging.String("path", r.URL.Path),
				logging.Int("status", ww.Status()),
				logging.Duration("elapsed", elapsed),
				logging.String("request_id", chimiddleware.GetReqID(r.Context())),
			}
			if elapsed > slowRequestThreshold {
				log.Warn("slow request", fields...)
			} else {
				log.Info("request", fields...)
			}
			if observer != nil {
				observer.ObserveRequest(route, r.Method, ww.Status(), elapsed)
			}
		})
	}
}
