// Package api implements the HTTP API for orderbell notifications.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/orderbell/internal/core/notify"
	"github.com/colonyops/orderbell/internal/core/order"
	"github.com/colonyops/orderbell/pkg/iojson"
)

// Service is what the handlers need from the application.
type Service struct {
	Prefs      *notify.Preferences
	Gate       *notify.Gate
	Dispatcher *notify.Dispatcher
	Bus        *notify.Bus
	Orders     SnapshotProcessor

	// HistoryLimit is used when a history request has no limit.
	HistoryLimit int

	// Profiler mounts net/http/pprof under /debug.
	Profiler bool
}

// SnapshotProcessor runs an order snapshot through the novelty watcher.
type SnapshotProcessor interface {
	Process(ctx context.Context, s order.Snapshot) order.Result
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	svc Service
}

// Error is a handler error with the status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func errBadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as an iojson error envelope. Field validation
// errors become a 400 with one data entry per field.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status, iojson.Error{Message: apiErr.Message})
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeJSON(w, http.StatusBadRequest, iojson.NewError(err))
		return
	}

	writeJSON(w, http.StatusInternalServerError, iojson.NewError(err))
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest("invalid JSON: " + err.Error())
	}
	return nil
}
