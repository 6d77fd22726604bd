// Package mid contains the middleware applied to every route of the
// ledger service.
package mid

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Middleware is a function that wraps a handler with extra behavior.
type Middleware func(http.Handler) http.Handler

// Wrap applies the middleware to the handler in the order provided, so the
// first middleware is the outermost.
func Wrap(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// Logger writes a line with a trace id for the start and completion of
// every request.
func Logger(log *zap.SugaredLogger) Middleware {
	return func(handler http.Handler) http.Handler {
		h := func(w http.ResponseWriter, r *http.Request) {
			traceID := uuid.NewString()
			start := time.Now()

			log.Infow("request started", "traceid", traceID, "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr)
			handler.ServeHTTP(w, r)
			log.Infow("request completed", "traceid", traceID, "method", r.Method, "path", r.URL.Path, "since", time.Since(start))
		}

		return http.HandlerFunc(h)
	}
}

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
func Cors(origin string) Middleware {
	return func(handler http.Handler) http.Handler {
		h := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			handler.ServeHTTP(w, r)
		}

		return http.HandlerFunc(h)
	}
}

// Panics recovers from panics inside handlers and converts them into a 500
// so one bad request can't take the service down.
func Panics(log *zap.SugaredLogger) Middleware {
	return func(handler http.Handler) http.Handler {
		h := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorw("panic recovered", "path", r.URL.Path, "panic", rec)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			handler.ServeHTTP(w, r)
		}

		return http.HandlerFunc(h)
	}
}
