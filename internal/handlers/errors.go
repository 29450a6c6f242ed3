package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/search"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/diewo77/pcquote/validation"
	"github.com/sirupsen/logrus"
)

// writeError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as internal_error.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var violations validation.Violations
	var notEligible *services.NotEligibleError
	switch {
	case errors.As(err, &violations):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
	case errors.As(err, &notEligible):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "not_eligible", map[string]any{"missing": notEligible.Missing})
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrDuplicateNumber):
		httpx.JSONError(w, http.StatusConflict, "duplicate_number", nil)
	case errors.Is(err, services.ErrRenderInProgress):
		httpx.JSONError(w, http.StatusConflict, "render_in_progress", nil)
	case errors.Is(err, search.ErrSuperseded):
		httpx.JSONError(w, http.StatusConflict, "superseded", nil)
	case errors.Is(err, search.ErrQueryTooShort):
		httpx.JSONError(w, http.StatusBadRequest, "query_too_short", map[string]any{"min_length": search.MinQueryLength})
	case errors.Is(err, search.ErrUnknownScope):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_seller", nil)
	case errors.Is(err, search.ErrNoResults):
		httpx.JSONError(w, http.StatusNotFound, "no_results", nil)
	case errors.Is(err, search.ErrUnavailable):
		log.WithError(err).Warn("search upstream failed")
		httpx.JSONError(w, http.StatusBadGateway, "search_unavailable", nil)
	case errors.Is(err, services.ErrRenderFailed):
		log.WithError(err).Error("render failed")
		httpx.JSONError(w, http.StatusInternalServerError, "render_failed", nil)
	default:
		log.WithError(err).Error("request failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// decode reads a JSON body and answers 400 itself when it cannot.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		switch {
		case errors.Is(err, httpx.ErrBodyTooLarge):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "body_too_large", map[string]any{"max_bytes": httpx.MaxBodyBytes})
		case errors.Is(err, httpx.ErrEmptyBody):
			httpx.JSONError(w, http.StatusBadRequest, "empty_body", nil)
		default:
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		}
		return false
	}
	return true
}
