// Package http exposes the REST API for accounts and calculators.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetcalc/internal/auth"
	"budgetcalc/internal/cache"
	applog "budgetcalc/internal/log"
	"budgetcalc/internal/middleware/ratelimit"
	"budgetcalc/internal/middleware/security"
	"budgetcalc/internal/middleware/trace"
	"budgetcalc/internal/services"
	"budgetcalc/internal/storage"
)

type Server struct {
	http.Server
	auth        *auth.Authenticator
	calculators *services.CalculatorService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// Per-owner calculator lists, invalidated on every write.
	listCache    *cache.LRUCache[[]storage.Calculator]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, authenticator *auth.Authenticator, calculators *services.CalculatorService, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		auth:        authenticator,
		calculators: calculators,
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:    security.NewDetector(),
		listCache:   cache.NewLRUCache[[]storage.Calculator](100, 5*time.Minute),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.cacheManager = cache.NewManager()
	s.cacheManager.Register(s.listCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Credential endpoints are the brute-force surface, only they get rate
	// limiting.
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/auth/reset-password", limited(http.HandlerFunc(s.handleResetPassword)))

	mux.HandleFunc("POST /api/calculators", s.handleCreateCalculator)
	mux.HandleFunc("GET /api/calculators/{userId}", s.handleListCalculators)
	mux.HandleFunc("GET /api/calculator/{id}", s.handleGetCalculator)
	mux.HandleFunc("PUT /api/calculator/{id}", s.handleUpdateCalculator)
	mux.HandleFunc("DELETE /api/calculator/{id}", s.handleDeleteCalculator)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.withDetection(handler)
	handler = s.tracer.Middleware(handler)
	handler = headers.Middleware(handler)
	if logger != nil {
		handler = applog.Middleware(logger)(handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// withDetection flags scanner-looking requests. They are logged with the
// request id and served normally; blocking is left to the edge.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
			)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	respondMsg(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Metrics returns the request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func (s *Server) invalidateList(ownerID string) {
	s.listCache.Delete(ownerID)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
