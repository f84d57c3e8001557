package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the uniform response shape: an HTTP-style status code, a
// human message and the payload. Successful lookups that find nothing
// answer with HTTP 200 and an embedded 404 status, so clients always
// parse the same shape.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, httpStatus int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{Status: http.StatusOK, Message: message, Data: data})
}

func writeCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Status: http.StatusCreated, Message: message, Data: data})
}

// writeNotFound reports a missing resource inside a 200 response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Envelope{Status: http.StatusNotFound, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Envelope{Status: http.StatusBadRequest, Message: message})
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, Envelope{Status: http.StatusForbidden, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, Envelope{Status: http.StatusUnauthorized, Message: message})
}

func writeConflict(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusConflict, Envelope{Status: http.StatusConflict, Message: message})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, Envelope{
		Status: http.StatusInternalServerError, Message: "internal server error",
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}
