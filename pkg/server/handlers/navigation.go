package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mercator-hq/warden/pkg/enforcer"
)

// NavigationHandler handles POST /v1/navigation.
type NavigationHandler struct {
	Enforcer Enforcer
	Logger   *slog.Logger
}

// NewNavigationHandler creates a navigation handler.
func NewNavigationHandler(e Enforcer, logger *slog.Logger) *NavigationHandler {
	return &NavigationHandler{Enforcer: e, Logger: logger}
}

// ServeHTTP evaluates the navigation and returns the Decision. The host
// follows RedirectURL when it is set, whether or not a WebSocket redirect
// was also delivered.
func (h *NavigationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ev enforcer.NavigationEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	if ev.URL == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "url is required")
		return
	}

	decision, err := h.Enforcer.BeforeNavigate(r.Context(), ev)
	if err != nil {
		var re *enforcer.RedirectError
		if !errors.As(err, &re) {
			writeError(w, http.StatusInternalServerError, CodeInternal, "navigation could not be evaluated")
			return
		}
		h.Logger.WarnContext(r.Context(), "redirect push failed, relying on response", "error", err)
	}

	writeJSON(w, http.StatusOK, decision)
}

// TabHandler handles DELETE /v1/tabs/{id}.
type TabHandler struct {
	Enforcer Enforcer
}

// NewTabHandler creates a tab handler.
func NewTabHandler(e Enforcer) *TabHandler {
	return &TabHandler{Enforcer: e}
}

// ServeHTTP forgets the tab.
func (h *TabHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tabID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "tab id must be an integer")
		return
	}
	h.Enforcer.TabClosed(r.Context(), tabID)
	w.WriteHeader(http.StatusNoContent)
}
