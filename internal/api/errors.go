package api

import (
	"errors"
	"net/http"

	"github.com/assurlink/courtage/internal/assistant"
	"github.com/assurlink/courtage/internal/breakeven"
	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/store"
	"github.com/assurlink/courtage/internal/transform"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details string      `json:"details,omitempty"`
	Field   string      `json:"field,omitempty"`
	Missing []string    `json:"missing,omitempty"`
	Partial interface{} `json:"partial,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a domain error onto an HTTP status and writes it
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	var (
		verr    *domain.ValidationError
		terr    *transform.TransformError
		serr    *breakeven.SolveError
		missing *assistant.MissingFieldsError
		gateway *assistant.GatewayError
	)
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   message,
			Details: err.Error(),
			Missing: missing.Fields,
		})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: verr.Reason, Field: verr.Field})
	case errors.As(err, &terr), errors.As(err, &serr), errors.Is(err, calculation.ErrMissingInput):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, store.ErrInvalidTransition):
		writeError(w, http.StatusConflict, message, err)
	case errors.As(err, &gateway), errors.Is(err, assistant.ErrEmptyResponse):
		h.Logger.Warn("assistant gateway failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, message, err)
	default:
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func unavailable(w http.ResponseWriter, what string) {
	writeError(w, http.StatusServiceUnavailable, what+" is not configured", nil)
}
