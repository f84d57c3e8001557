package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"simplewallet/internal/core"
	"simplewallet/internal/storage"
)

// isUniqueViolation reports whether the error came from a UNIQUE
// constraint (duplicate username or email).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// pathID parses the {id} path segment; a malformed id yields 0 and a
// written 400 response.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func familyScope(r *http.Request) bool {
	return r.URL.Query().Get("family") == "true"
}

// pageRequest reads the paging query parameters.
func pageRequest(r *http.Request) storage.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return storage.PageRequest{
		Page: page,
		Size: size,
		Sort: q.Get("sort"),
		Desc: q.Get("direction") == "desc",
	}
}

// writeServiceError maps domain failures onto the response envelope:
// ownership violations are forbidden, validation failures are bad
// requests, anything else is internal.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrAccountNotOwned),
		errors.Is(err, core.ErrCategoryNotOwned),
		errors.Is(err, core.ErrForbidden):
		writeForbidden(w, err.Error())
	case errors.Is(err, core.ErrCategoryInUse):
		writeConflict(w, err.Error())
	case isUniqueViolation(err):
		writeConflict(w, "username or email already taken")
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrLongDescription),
		errors.Is(err, core.ErrMissingAccount),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrInvalidDueDay),
		errors.Is(err, core.ErrSelfParent),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptyEmail),
		errors.Is(err, core.ErrEmptyPassword),
		errors.Is(err, core.ErrZeroDate):
		writeBadRequest(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeInternalError(w)
	}
}
