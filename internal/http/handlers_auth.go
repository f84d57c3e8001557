package http

import (
	"log/slog"
	"net/http"

	"simplewallet/internal/auth"
	"simplewallet/internal/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	ExpiresAt    string `json:"expiresAt"`
	Username     string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.UserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.users.Register(r.Context(), req)
	if err != nil {
		if isUniqueViolation(err) {
			writeConflict(w, "username or email already taken")
			return
		}
		writeBadRequest(w, err.Error())
		return
	}
	writeCreated(w, "user registered", created)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Login lookup failed", "error", err)
		writeInternalError(w)
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.Password) {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	s.issueTokens(w, r, user.Username)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	username, err := s.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		writeUnauthorized(w, "invalid refresh token")
		return
	}
	user, err := s.users.FindByUsername(r.Context(), username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Refresh lookup failed", "error", err)
		writeInternalError(w)
		return
	}
	if user == nil {
		writeUnauthorized(w, "unknown user")
		return
	}

	s.issueTokens(w, r, user.Username)
}

func (s *Server) issueTokens(w http.ResponseWriter, r *http.Request, username string) {
	token, err := s.tokens.Generate(username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", "error", err)
		writeInternalError(w)
		return
	}
	writeOK(w, "authenticated", tokenResponse{
		Token:        token,
		RefreshToken: s.tokens.GenerateRefresh(username),
		ExpiresIn:    s.tokens.ExpiresIn(),
		ExpiresAt:    s.tokens.ExpiresAt(),
		Username:     username,
	})
}
