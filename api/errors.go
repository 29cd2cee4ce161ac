package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farmkit/stratreg/naming"
	"github.com/farmkit/stratreg/registry"
	"github.com/farmkit/stratreg/strategies"
)

var (
	// ErrBadRequest is returned when the provided HTTP request
	// is malformed.
	ErrBadRequest = errors.New("invalid request parameters")
	// ErrNotFound is returned when handling a request for an item that
	// does not exist.
	ErrNotFound = errors.New("item not found")
)

// HumanReadableError is the JSON body of every error response.
type HumanReadableError struct {
	Msg string `json:"msg"`
}

func HttpCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, naming.ErrEmptyComponent),
		errors.Is(err, naming.ErrMalformedName):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound),
		errors.Is(err, registry.ErrUnknownChain),
		errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, strategies.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// A simple error handler that renders any error as human-readable JSON to
// the HTTP response stream `w`.
func HumanReadableJsonErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(HttpCodeForError(err))

	_ = json.NewEncoder(w).Encode(HumanReadableError{Msg: err.Error()})
}
