package http

import (
	"net/http"

	"simplewallet/internal/services"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req services.AccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.accounts.Create(r.Context(), req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "account created", created)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	var (
		list []services.AccountResponse
		err  error
	)
	if familyScope(r) {
		list, err = s.accounts.FindAllForFamily(r.Context(), userID(r))
	} else {
		list, err = s.accounts.FindByUser(r.Context(), userID(r))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "accounts", list)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := s.accounts.FindByID(r.Context(), id, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if account == nil {
		writeNotFound(w, "account not found")
		return
	}
	writeOK(w, "account", account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req services.AccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.accounts.Update(r.Context(), id, req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "account not found")
		return
	}
	writeOK(w, "account updated", updated)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	removed, err := s.accounts.Delete(r.Context(), id, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !removed {
		writeNotFound(w, "account not found")
		return
	}
	writeOK(w, "account deleted", nil)
}
