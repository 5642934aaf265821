package server

import (
	"dota-tracker/internal/domain"
	"dota-tracker/internal/middleware"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// messages holds the client-facing text per failure class of one endpoint.
type messages struct {
	invalid  string
	notFound string
	failed   string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, msgs messages) {
	status, code, msg := classify(err, msgs)

	log := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", code).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("code", code).Msg("request rejected")
	}

	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      code,
		Details:   err.Error(),
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func classify(err error, msgs messages) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", orDefault(msgs.invalid, "Invalid request")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found", orDefault(msgs.notFound, "Not found")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusInternalServerError, "upstream_unavailable", orDefault(msgs.failed, "Server error")
	case errors.Is(err, domain.ErrUpstreamRejected):
		return http.StatusInternalServerError, "upstream_rejected", orDefault(msgs.failed, "Server error")
	case errors.Is(err, domain.ErrUpstreamMalformed):
		return http.StatusInternalServerError, "upstream_malformed", orDefault(msgs.failed, "Server error")
	case errors.Is(err, domain.ErrStore):
		return http.StatusInternalServerError, "store_error", orDefault(msgs.failed, "Server error")
	default:
		return http.StatusInternalServerError, "internal_error", orDefault(msgs.failed, "Server error")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
