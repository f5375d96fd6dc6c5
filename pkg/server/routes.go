package server

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// startAPI registers all HTTP routes and starts the API server in a goroutine.
func (s *Server) startAPI() {
	go func() {
		s.logger.Infof("Starting API server on port %v...", s.listenPort)
		srv := &http.Server{
			Addr:              ":" + s.listenPort,
			Handler:           s.routes(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil {
			s.logger.Fatalf("Failed to start API server: %v", err)
		}
	}()
}

// routes builds the HTTP handler serving the API and metrics.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api", s.handleAPI)
	mux.HandleFunc("/api/hosts/{hostname}", s.handleHostAPI)
	mux.HandleFunc("/api/summary", s.handleSummaryAPI)
	mux.HandleFunc("/metrics", s.handlePrometheus)

	rl := newRateLimitMiddleware(s.limiter)
	return requireGET(rl(noCacheMiddleware(securityHeadersMiddleware(mux))))
}

// requireGET rejects every method other than GET and HEAD.
func requireGET(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newRateLimitMiddleware answers 429 once limiter is exhausted. A nil
// limiter disables limiting.
func newRateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// securityHeadersMiddleware sets conservative response headers.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// noCacheMiddleware sets headers to prevent caching of responses.
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
