package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"worktime-bot/internal/daterange"
	"worktime-bot/internal/schedule"
	"worktime-bot/internal/service"
	"worktime-bot/pkg/holidays"
	"worktime-bot/pkg/odoo"
)

type Response struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func success(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{Error: &ErrorDetail{Code: code, Message: message}})
}

// handleError maps service errors to HTTP responses.
func handleError(w http.ResponseWriter, err error) {
	var unknown *schedule.UnknownScheduleError
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		fail(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.As(err, &unknown):
		fail(w, http.StatusUnprocessableEntity, "unknown_schedule", err.Error())
	case errors.Is(err, daterange.ErrConflictingOptions):
		fail(w, http.StatusBadRequest, "conflicting_options", err.Error())
	case errors.Is(err, daterange.ErrInvalidRange):
		fail(w, http.StatusBadRequest, "invalid_range", err.Error())
	case errors.Is(err, service.ErrNoCredentials), errors.Is(err, odoo.ErrUnauthorized), errors.Is(err, odoo.ErrNotSpreadsheet):
		fail(w, http.StatusFailedDependency, "odoo_session", err.Error())
	case errors.Is(err, holidays.ErrFeedUnavailable):
		fail(w, http.StatusServiceUnavailable, "holidays_unavailable", err.Error())
	case errors.Is(err, service.ErrNotConfigured):
		fail(w, http.StatusNotImplemented, "not_configured", err.Error())
	default:
		fail(w, http.StatusInternalServerError, "internal", "an unexpected error occurred")
	}
}
