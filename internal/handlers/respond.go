package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/clinic-desk/internal/apperr"
)

type errorResponse struct {
	Error        string `json:"error"`
	Kind         string `json:"kind,omitempty"`
	ErrorType    string `json:"error_type,omitempty"`
	ConflictTime string `json:"conflict_time,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusOf picks the HTTP status for a store failure. Backend statuses are
// passed through; local failures map by kind.
func statusOf(err error) int {
	if errors.Is(err, apperr.ErrNotAuthenticated) {
		return http.StatusUnauthorized
	}
	e, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if e.StatusCode >= 400 {
		return e.StatusCode
	}
	switch e.Kind {
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindNetworkUnreachable:
		return http.StatusBadGateway
	case apperr.KindDomainConflict:
		return http.StatusConflict
	case apperr.KindValidation, apperr.KindHTTPStatus:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	if e, ok := apperr.As(err); ok {
		resp.Kind = string(e.Kind)
		resp.ErrorType = e.ErrorType
		resp.ConflictTime = e.ConflictTime
		resp.Retryable = e.Retryable
	}
	writeJSON(w, statusOf(err), resp)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Kind: string(apperr.KindValidation)})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		badRequest(w, "Invalid id")
		return 0, false
	}
	return id, true
}

func boolQuery(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
