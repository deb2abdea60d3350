// internal/api/middleware.go
package api

import (
	"context"
	"net/http"
	"time"
)

// Middleware wraps an http.HandlerFunc with additional behavior.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies middlewares to handler, outermost first.
func Chain(handler http.HandlerFunc, middlewares ...Middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// WithCORS adds CORS headers and answers OPTIONS preflight requests.
func WithCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			WriteJSON(w, http.StatusOK, nil)
			return
		}

		next(w, r)
	}
}

// RequireGET requires GET (or HEAD) method.
func RequireGET(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			WriteJSON(w, http.StatusOK, nil)
			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			WriteMethodNotAllowed(w, "GET method required")
			return
		}

		next(w, r)
	}
}

// WithTimeout adds a timeout to the request context.
func WithTimeout(timeout time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// RequireFeature returns 404 for a feature that is disabled in the
// configuration, so disabled diagnostic surfaces are indistinguishable from
// absent ones.
func RequireFeature(enabled bool, featureName string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			WriteJSON(w, http.StatusOK, nil)
			return
		}

		if !enabled {
			WriteNotFound(w, featureName+" not enabled")
			return
		}

		next(w, r)
	}
}

// RequireQueryParams rejects requests missing any of the named query
// parameters.
func RequireQueryParams(names ...string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				WriteJSON(w, http.StatusOK, nil)
				return
			}

			for _, name := range names {
				if r.URL.Query().Get(name) == "" {
					WriteBadRequest(w, name+" parameter is required")
					return
				}
			}

			next(w, r)
		}
	}
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// WithLogging calls logf with the method, path, response status, and
// duration of every request. Handlers that never call WriteHeader are
// reported as 200.
func WithLogging(logf func(method, path string, status int, duration time.Duration)) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next(sw, r)
			logf(r.Method, r.URL.Path, sw.status, time.Since(start))
		}
	}
}
