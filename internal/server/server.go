// Package server provides the HTTP shell for the career strategy report.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/career-architect/internal/server/middleware"
	"github.com/jonathan/career-architect/internal/server/ratelimit"
	"github.com/jonathan/career-architect/internal/session"
	"github.com/jonathan/career-architect/internal/types"
)

// SessionCookieName is the cookie that carries the signed session token
const SessionCookieName = "career_session"

const defaultMaxUploadBytes = 20 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	router      chi.Router
	registry    *session.Registry
	tokens      *TokenService
	rateLimiter *ratelimit.Limiter
	log         *logrus.Logger
	cfg         Config
}

// Config holds server configuration
type Config struct {
	Port           int
	LogoPath       string
	SessionSecret  string
	CookieSecure   bool
	CORSOrigins    []string
	MaxUploadBytes int64
	RateLimit      *ratelimit.Config // nil disables limiting
}

// New creates a new server instance
func New(cfg Config, registry *session.Registry, log *logrus.Logger) (*Server, error) {
	if registry == nil {
		return nil, fmt.Errorf("session registry is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if log == nil {
		log = logrus.New()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		registry:    registry,
		tokens:      NewTokenService(cfg.SessionSecret),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		log:         log,
		cfg:         cfg,
	}
	s.router = s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for report generation
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(s.log))
	r.Use(chimw.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(s.withRateLimit)
	r.Use(middleware.SessionCookie(SessionCookieName, s.tokens.AsTokenValidator()))

	r.Get("/", s.handleIndex)
	r.Get("/logo", s.handleLogo)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Get("/session", s.handleSession)
		r.Post("/generate", s.handleGenerate)
		r.Get("/report", s.handleReport)
	})

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}

// lookup resolves the caller's registered session. Callers without one get a
// throwaway locked session that is never stored and sets no cookie.
func (s *Server) lookup(r *http.Request) *session.Session {
	if id, err := middleware.GetSessionID(r); err == nil {
		if sess, err := s.registry.Get(id); err == nil {
			return sess
		}
	}
	return s.registry.Ephemeral()
}

// register resolves the caller's session, storing a new one and setting its
// cookie when the request carries no valid token for a live session. Only
// login registers, so anonymous reads never grow the registry.
func (s *Server) register(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	id, _ := middleware.GetSessionID(r)
	sess, created := s.registry.GetOrCreate(id)
	if !created {
		return sess, nil
	}

	token, err := s.tokens.GenerateToken(sess.ID())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.WithField("session_id", sess.ID()).Debug("session created")
	return sess, nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID keys rate limiting on the connection's RemoteAddr.
// Forwarding headers are client-controlled and ignored.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.log.WithFields(logrus.Fields{
		"client": clientID,
		"path":   r.URL.Path,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response with the status mapped from err
func (s *Server) errorResponse(w http.ResponseWriter, err error, message string) {
	s.jsonResponse(w, HTTPStatus(err), types.ErrorResponse{Error: err.Error(), Message: message})
}
