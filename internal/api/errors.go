package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/device"
)

// Error is the body of every failed request.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeValidation     = "validation_error"
	ErrCodeNotFound       = "not_found"
	ErrCodeGuardRejected  = "guard_rejected"
	ErrCodeTogglePending  = "toggle_pending"
	ErrCodeSuperseded     = "superseded"
	ErrCodeRequestTimeout = "request_timeout"
	ErrCodeInternal       = "internal_error"
)

// controlErrors maps controller and registry sentinels to responses,
// first match wins.
var controlErrors = []struct {
	target error
	status int
	code   string
}{
	{device.ErrDeviceNotFound, http.StatusNotFound, ErrCodeNotFound},
	{device.ErrInvalidStatus, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrInvalidMode, http.StatusBadRequest, ErrCodeValidation},
	{device.ErrGuardRejected, http.StatusConflict, ErrCodeGuardRejected},
	{control.ErrTogglePending, http.StatusConflict, ErrCodeTogglePending},
	{control.ErrSuperseded, http.StatusConflict, ErrCodeSuperseded},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeControlError answers a failed toggle or mode change. Nothing was
// changed in any of these cases.
func writeControlError(w http.ResponseWriter, err error) {
	for _, m := range controlErrors {
		if errors.Is(err, m.target) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusRequestTimeout, ErrCodeRequestTimeout, "request cancelled before the change took effect")
		return
	}
	writeInternalError(w, "load control failed")
}
