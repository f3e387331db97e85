package handlers

import (
	"net/http"
	"time"

	"mercator-hq/warden/pkg/policy/manager"
	"mercator-hq/warden/pkg/policy/model"
)

// RefreshResponse summarizes a refresh.
type RefreshResponse struct {
	ID              string   `json:"id"`
	Outcome         string   `json:"outcome"`
	DurationMS      int64    `json:"durationMs"`
	Version         uint64   `json:"version,omitempty"`
	Hash            string   `json:"hash,omitempty"`
	Issues          []string `json:"issues,omitempty"`
	SourceErrors    []string `json:"sourceErrors,omitempty"`
	SkippedExternal bool     `json:"skippedExternal,omitempty"`
	PersistError    string   `json:"persistError,omitempty"`
}

// NewRefreshResponse converts a refresh result.
func NewRefreshResponse(res *manager.RefreshResult) RefreshResponse {
	out := RefreshResponse{
		ID:              res.ID,
		Outcome:         string(res.Outcome),
		DurationMS:      res.Duration.Milliseconds(),
		SkippedExternal: res.SkippedExternal,
	}
	if res.Active != nil {
		out.Version = res.Active.Version
		out.Hash = res.Active.Hash
	}
	for _, issue := range res.Issues {
		out.Issues = append(out.Issues, issue.String())
	}
	for _, se := range res.SourceErrors {
		out.SourceErrors = append(out.SourceErrors, se.Error())
	}
	if res.PersistError != nil {
		out.PersistError = res.PersistError.Error()
	}
	return out
}

// RefreshHandler handles POST /v1/refresh.
type RefreshHandler struct {
	Lifecycle Lifecycle
}

// NewRefreshHandler creates a refresh handler.
func NewRefreshHandler(l Lifecycle) *RefreshHandler {
	return &RefreshHandler{Lifecycle: l}
}

// ServeHTTP runs a refresh, joining one already in flight.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Lifecycle.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, CodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, NewRefreshResponse(res))
}

// ConfigResponse describes the active configuration.
type ConfigResponse struct {
	State       string               `json:"state"`
	Version     uint64               `json:"version,omitempty"`
	Hash        string               `json:"hash,omitempty"`
	Origin      string               `json:"origin,omitempty"`
	ActivatedAt *time.Time           `json:"activatedAt,omitempty"`
	Summary     *model.PolicySummary `json:"summary"`
}

// ConfigHandler handles GET /v1/config.
type ConfigHandler struct {
	Lifecycle Lifecycle
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(l Lifecycle) *ConfigHandler {
	return &ConfigHandler{Lifecycle: l}
}

// ServeHTTP returns the active configuration; summary is null before the
// first activation.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := ConfigResponse{State: string(h.Lifecycle.State())}
	if a := h.Lifecycle.Active(); a != nil {
		at := a.ActivatedAt
		resp.Version = a.Version
		resp.Hash = a.Hash
		resp.Origin = string(a.Origin)
		resp.ActivatedAt = &at
		resp.Summary = a.Summary
	}
	writeJSON(w, http.StatusOK, resp)
}
