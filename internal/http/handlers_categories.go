package http

import (
	"net/http"

	"simplewallet/internal/services"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.categories.Create(r.Context(), req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "category created", created)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		list []services.CategoryResponse
		err  error
	)
	if familyScope(r) {
		list, err = s.categories.FindAllForFamily(r.Context(), userID(r))
	} else {
		list, err = s.categories.FindByUser(r.Context(), userID(r))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "categories", list)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	category, err := s.categories.FindByID(r.Context(), id, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if category == nil {
		writeNotFound(w, "category not found")
		return
	}
	writeOK(w, "category", category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req services.CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.categories.Update(r.Context(), id, req, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if updated == nil {
		writeNotFound(w, "category not found")
		return
	}
	writeOK(w, "category updated", updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	removed, err := s.categories.Delete(r.Context(), id, userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !removed {
		writeNotFound(w, "category not found")
		return
	}
	writeOK(w, "category deleted", nil)
}
