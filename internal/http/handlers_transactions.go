package http

import (
	"net/http"

	"simplewallet/internal/services"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.transactions.Create(r.Context(), req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "transaction created", created)
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req services.BatchTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	series, err := s.transactions.CreateBatch(r.Context(), req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "transactions created", series)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		page *services.TransactionPageResponse
		err  error
	)
	if familyScope(r) {
		page, err = s.transactions.ListFamily(r.Context(), userID(r), pageRequest(r))
	} else {
		page, err = s.transactions.List(r.Context(), userID(r), pageRequest(r))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "transactions", page)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.transactions.FindByID(r.Context(), id, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if tx == nil {
		writeNotFound(w, "transaction not found")
		return
	}
	writeOK(w, "transaction", tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req services.TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.transactions.Update(r.Context(), id, req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "transaction not found")
		return
	}
	writeOK(w, "transaction updated", updated)
}

func (s *Server) handleEffectiveTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req services.EffectivationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.transactions.Effective(r.Context(), id, req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "transaction not found")
		return
	}
	writeOK(w, "transaction effectuated", updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	removed, err := s.transactions.Delete(r.Context(), id, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !removed {
		writeNotFound(w, "transaction not found")
		return
	}
	writeOK(w, "transaction deleted", nil)
}
