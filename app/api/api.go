// Package api holds the response and error conventions shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/app/listing"
	"github.com/mytheresa/phone-catalog/models"
)

var (
	// ErrInvalidBody indicates a missing, null, or malformed JSON body.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrInvalidID indicates a path id that is not a positive integer.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidQuery indicates a malformed query string parameter.
	ErrInvalidQuery = errors.New("invalid query parameter")

	// ErrIDMismatch indicates the route id and the body id disagree.
	ErrIDMismatch = errors.New("ID in the route does not match the ID in the body")
)

// RespondJSON writes a JSON response with the given status code and data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes {"error": "<message>"}.
// Server errors are logged at error level, client errors at warn level.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
	} else {
		logger.Warn("request rejected", "error", err, "status", status)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// Respond writes err with the status StatusFor picks for it.
func Respond(w http.ResponseWriter, logger *slog.Logger, err error) {
	RespondError(w, logger, StatusFor(err), err)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrPhoneNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, assets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrIDMismatch),
		errors.Is(err, models.ErrUnknownCategory),
		errors.Is(err, models.ErrNegativePrice),
		errors.Is(err, listing.ErrInvalidPageSize),
		errors.Is(err, assets.ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PathID parses the {id} path value of a request.
func PathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}

// DecodeBody decodes the JSON request body.
// A literal null body decodes to a nil pointer and is rejected.
func DecodeBody[T any](r *http.Request) (*T, error) {
	var v *T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, ErrInvalidBody
	}
	if v == nil {
		return nil, ErrInvalidBody
	}
	return v, nil
}
