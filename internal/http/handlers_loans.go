package http

import (
	"net/http"

	"simplewallet/internal/services"
)

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req services.LoanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	loan, err := s.loans.CreateLoan(r.Context(), req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "loan created", loan)
}
