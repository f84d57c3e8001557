// Package http exposes the wallet over a JSON API: authentication,
// accounts, categories, transactions, installments and loans, plus the
// profile endpoints that manage the family link.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"simplewallet/internal/auth"
	"simplewallet/internal/services"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUserID
)

type Server struct {
	http.Server
	tokens       *auth.TokenManager
	users        *services.UserService
	accounts     *services.AccountService
	categories   *services.CategoryService
	transactions *services.TransactionService
	loans        *services.LoanService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, tokens *auth.TokenManager,
	users *services.UserService,
	accounts *services.AccountService,
	categories *services.CategoryService,
	transactions *services.TransactionService,
	loans *services.LoanService) *Server {

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		tokens:       tokens,
		users:        users,
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		loans:        loans,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Rate-limited, unauthenticated.
	mux.HandleFunc("POST /api/auth/register", s.withSecurityHeaders(s.withRateLimit(s.handleRegister)))
	mux.HandleFunc("POST /api/auth/login", s.withSecurityHeaders(s.withRateLimit(s.handleLogin)))
	mux.HandleFunc("POST /api/auth/refresh", s.withSecurityHeaders(s.withRateLimit(s.handleRefresh)))

	mux.HandleFunc("POST /api/accounts", s.protected(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts", s.protected(s.handleListAccounts))
	mux.HandleFunc("GET /api/accounts/{id}", s.protected(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.protected(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.protected(s.handleDeleteAccount))

	mux.HandleFunc("POST /api/categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories", s.protected(s.handleListCategories))
	mux.HandleFunc("GET /api/categories/{id}", s.protected(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.protected(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("POST /api/transactions/batch", s.protected(s.handleCreateBatch))
	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}/effective", s.protected(s.handleEffectiveTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/loans", s.protected(s.handleCreateLoan))

	mux.HandleFunc("GET /api/users/me", s.protected(s.handleGetProfile))
	mux.HandleFunc("PUT /api/users/me", s.protected(s.handleUpdateProfile))
	mux.HandleFunc("PATCH /api/users/me/password", s.protected(s.handleUpdatePassword))
	mux.HandleFunc("PATCH /api/users/me/parent", s.protected(s.handleUpdateParent))
	mux.HandleFunc("GET /api/users/me/children", s.protected(s.handleListChildren))

	return s
}

func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.withAuth(next))
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers and request logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := "req_" + uuid.NewString()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// withRateLimit throttles per client IP.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, Envelope{
				Status: http.StatusTooManyRequests, Message: "too many requests",
			})
			return
		}
		next(w, r)
	}
}

// withAuth verifies the bearer token and resolves the logged-in user
// id into the request context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		username, err := s.tokens.Verify(header[len(prefix):])
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		user, err := s.users.FindByUsername(r.Context(), username)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to resolve token subject",
				"username", username, "error", err)
			writeInternalError(w)
			return
		}
		if user == nil {
			writeUnauthorized(w, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, user.ID.String())
		next(w, r.WithContext(ctx))
	}
}

// userID returns the authenticated user id stored by withAuth.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyUserID).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
