package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/jonathan/resume-analyzer/internal/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownGrace   = 30 * time.Second
	janitorInterval = time.Minute
	archiveTimeout  = time.Minute
)

// AI is the model client used by the workspaces.
type AI interface {
	controller.Analyzer
	GenerateInterviewQuestion(ctx context.Context, jobTitle, jobDescription string) string
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// Config holds server configuration
type Config struct {
	Port int
	// ResetURL is where password recovery links land.
	ResetURL string
	// IdleTTL evicts workspaces without requests for this long. Zero keeps
	// them until deleted.
	IdleTTL    time.Duration
	Controller controller.Options
	RateLimit  *ratelimit.Config
}

// Deps are the collaborators shared by every workspace. Persistence, Pages
// and Archive may be nil.
type Deps struct {
	AI          AI
	Backend     session.Backend
	Persistence persistence.Client
	Pages       ingestion.PageFetcher
	Archive     storage.Archive
	Logger      zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	registry    *Registry
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	log         zerolog.Logger
	cfg         Config

	ai      AI
	backend session.Backend
	store   persistence.Client
	pages   ingestion.PageFetcher
	archive storage.Archive

	background sync.WaitGroup
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.LoadConfig()
	}
	if deps.Pages == nil {
		deps.Pages = fetch.NewImporter(fetch.ImporterOptions{Logger: deps.Logger})
	}
	if deps.Archive == nil {
		deps.Archive = storage.NopArchive{}
	}

	s := &Server{
		registry:    NewRegistry(cfg.IdleTTL, deps.Logger),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		validate:    validator.New(),
		log:         deps.Logger.With().Str("component", "server").Logger(),
		cfg:         cfg,
		ai:          deps.AI,
		backend:     deps.Backend,
		store:       deps.Persistence,
		pages:       deps.Pages,
		archive:     deps.Archive,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Workspace lifecycle
	mux.HandleFunc("POST /workspaces", s.handleCreateWorkspace)
	mux.HandleFunc("GET /workspaces/{id}", s.handleGetWorkspace)
	mux.HandleFunc("DELETE /workspaces/{id}", s.handleDeleteWorkspace)
	mux.HandleFunc("GET /workspaces/{id}/events", s.handleWorkspaceEvents)

	// Draft input
	mux.HandleFunc("PUT /workspaces/{id}/draft", s.handleUpdateDraft)
	mux.HandleFunc("POST /workspaces/{id}/resume", s.handleSubmitResume)
	mux.HandleFunc("POST /workspaces/{id}/job-posting", s.handleImportJobPosting)

	// Controller actions
	mux.HandleFunc("POST /workspaces/{id}/start", s.handleStart)
	mux.HandleFunc("POST /workspaces/{id}/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /workspaces/{id}/cancel", s.handleCancel)
	mux.HandleFunc("POST /workspaces/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /workspaces/{id}/dismiss-error", s.handleDismissError)
	mux.HandleFunc("POST /workspaces/{id}/navigate", s.handleNavigate)
	mux.HandleFunc("GET /workspaces/{id}/history", s.handleOpenHistory)
	mux.HandleFunc("POST /workspaces/{id}/history/{recordID}/select", s.handleSelectHistory)

	// Auth
	mux.HandleFunc("POST /workspaces/{id}/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /workspaces/{id}/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /workspaces/{id}/auth/signout", s.handleSignOut)
	mux.HandleFunc("POST /workspaces/{id}/auth/password-reset", s.handlePasswordReset)
	mux.HandleFunc("POST /workspaces/{id}/auth/recover", s.handleRecover)
	mux.HandleFunc("POST /workspaces/{id}/auth/password", s.handleUpdatePassword)

	// AI extras
	mux.HandleFunc("POST /workspaces/{id}/speech", s.handleSpeech)
	mux.HandleFunc("POST /workspaces/{id}/interview-question", s.handleInterviewQuestion)

	mux.HandleFunc("POST /contact", s.handleContact)
	mux.Handle("GET /v1/analyses", middleware.AuthMiddleware(s.backend)(http.HandlerFunc(s.handleListAnalyses)))

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: event streams stay open for the workspace lifetime.
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Registry returns the workspace registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every workspace.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.registry.Janitor(gctx, janitorInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.close()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.log.Info().Msg("server stopped")
		return nil
	})

	return g.Wait()
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

func (s *Server) close() {
	s.registry.CloseAll()
	s.background.Wait()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps event streams working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		ev := s.log.Info()
		if rec.status >= http.StatusInternalServerError {
			ev = s.log.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"workspaces": s.registry.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to its status and user-facing message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	s.errorResponse(w, status, errorMessage(err))
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.log.Warn().
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Time("reset_at", info.ResetTime).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
