package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nbmusic/remote/internal/gateway"
	"github.com/nbmusic/remote/internal/logging"
	"github.com/nbmusic/remote/internal/models"
)

// writeSuccess writes a {success:true, data} response.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.APIResponse{Success: true, Data: data})
}

// writeFailure writes a {success:false, error} response.
// For simple client errors (400-level), use: writeFailure(w, status, msg)
// For server errors with a cause, use: writeFailureWithCause(ctx, w, status, msg, err)
func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.APIResponse{
		Success: false,
		Error:   &models.APIError{Code: status, Message: message},
	})
}

// writeFailureWithCause writes an error response and logs the error with stack trace.
func writeFailureWithCause(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	writeFailure(w, status, message)

	if status >= 500 && err != nil {
		wrappedErr := logging.WrapError(err, message)
		logging.LogErrorWithStatus(ctx, status, "error response", wrappedErr)
	}
}

// writeCommandError maps a gateway dispatch error onto the response envelope:
// client errors become 400s with their own message, resolution failures 502s,
// anything else a generic 500.
func writeCommandError(ctx context.Context, w http.ResponseWriter, err error) {
	if gateway.IsClientError(err) {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	var resErr *gateway.ResolutionError
	if errors.As(err, &resErr) {
		writeFailureWithCause(ctx, w, http.StatusBadGateway, resErr.Error(), err)
		return
	}

	writeFailureWithCause(ctx, w, http.StatusInternalServerError, "command failed", err)
}
