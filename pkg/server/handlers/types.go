package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mercator-hq/warden/pkg/enforcer"
	"mercator-hq/warden/pkg/policy/manager"
)

// Enforcer is the part of *enforcer.Enforcer the bridge drives.
type Enforcer interface {
	BeforeNavigate(ctx context.Context, ev enforcer.NavigationEvent) (enforcer.Decision, error)
	TabClosed(ctx context.Context, tabID int)
	HandleMessage(ctx context.Context, sender enforcer.Sender, msg enforcer.Message) (*enforcer.Response, error)
}

// Lifecycle is the part of *manager.Manager the bridge drives.
type Lifecycle interface {
	Refresh(ctx context.Context) (*manager.RefreshResult, error)
	Active() *manager.Active
	State() manager.State
	LastResult() *manager.RefreshResult
}

// MessageRequest is the body of POST /v1/messages and of inbound WebSocket
// frames.
type MessageRequest struct {
	// ID is echoed in WebSocket replies. Unused over HTTP.
	ID      string            `json:"id,omitempty"`
	Sender  enforcer.Sender   `json:"sender"`
	Message enforcer.Envelope `json:"message"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error codes.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeUnknownCategory = "unknown_category"
	CodeInvalidDuration = "invalid_duration"
	CodeInvalidSender   = "invalid_sender"
	CodeBodyTooLarge    = "body_too_large"
	CodeNotReady        = "not_ready"
	CodeInternal        = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Message: message, Code: code}})
}

// decodeBody decodes a JSON request body, reporting 413 when the body
// exceeds the configured limit.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// messageErrorStatus maps message handling errors to a status and code.
func messageErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, enforcer.ErrUnknownCategory):
		return http.StatusBadRequest, CodeUnknownCategory
	case errors.Is(err, enforcer.ErrInvalidDuration):
		return http.StatusBadRequest, CodeInvalidDuration
	case errors.Is(err, enforcer.ErrInvalidSender):
		return http.StatusBadRequest, CodeInvalidSender
	case errors.Is(err, enforcer.ErrMalformedMessage):
		return http.StatusBadRequest, CodeInvalidRequest
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
