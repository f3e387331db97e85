package handlers

import (
	"net/http"
)

// MessageHandler handles POST /v1/messages.
type MessageHandler struct {
	Enforcer Enforcer
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(e Enforcer) *MessageHandler {
	return &MessageHandler{Enforcer: e}
}

// ServeHTTP dispatches one UI message. The reply body is the message
// response, or null for override messages.
func (h *MessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := req.Message.Decode()
	if err != nil {
		status, code := messageErrorStatus(err)
		writeError(w, status, code, err.Error())
		return
	}

	resp, err := h.Enforcer.HandleMessage(r.Context(), req.Sender, msg)
	if err != nil {
		status, code := messageErrorStatus(err)
		writeError(w, status, code, err.Error())
		return
	}

	if resp == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
