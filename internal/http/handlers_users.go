package http

import (
	"net/http"

	"github.com/google/uuid"
)

type profileUpdateRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type passwordUpdateRequest struct {
	Password string `json:"password"`
}

type parentUpdateRequest struct {
	ParentID *string `json:"parentId"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.FindByID(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if profile == nil {
		writeNotFound(w, "user not found")
		return
	}
	writeOK(w, "profile", profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.users.Update(r.Context(), userID(r), req.Email, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "user not found")
		return
	}
	writeOK(w, "profile updated", updated)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.users.UpdatePassword(r.Context(), userID(r), req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "password updated", nil)
}

func (s *Server) handleUpdateParent(w http.ResponseWriter, r *http.Request) {
	var req parentUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ParentID != nil {
		if _, err := uuid.Parse(*req.ParentID); err != nil {
			writeBadRequest(w, "invalid parent id")
			return
		}
	}
	updated, err := s.users.UpdateParent(r.Context(), userID(r), req.ParentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "parent not found")
		return
	}
	writeOK(w, "parent updated", updated)
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := s.users.Children(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "children", children)
}
