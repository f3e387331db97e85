package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/warden/pkg/enforcer"
	"mercator-hq/warden/pkg/policy/manager"
	"mercator-hq/warden/pkg/policy/model"
	"mercator-hq/warden/pkg/telemetry/health"
)

type fakeEnforcer struct {
	decision enforcer.Decision
	navErr   error
	closed   []int
	resp     *enforcer.Response
	msgErr   error
	lastMsg  enforcer.Message
}

func (f *fakeEnforcer) BeforeNavigate(_ context.Context, ev enforcer.NavigationEvent) (enforcer.Decision, error) {
	d := f.decision
	d.TabID = ev.TabID
	d.URL = ev.URL
	return d, f.navErr
}

func (f *fakeEnforcer) TabClosed(_ context.Context, tabID int) {
	f.closed = append(f.closed, tabID)
}

func (f *fakeEnforcer) HandleMessage(_ context.Context, _ enforcer.Sender, msg enforcer.Message) (*enforcer.Response, error) {
	f.lastMsg = msg
	return f.resp, f.msgErr
}

type fakeLifecycle struct {
	active *manager.Active
	state  manager.State
	last   *manager.RefreshResult
	err    error
}

func (f *fakeLifecycle) Refresh(context.Context) (*manager.RefreshResult, error) {
	return f.last, f.err
}
func (f *fakeLifecycle) Active() *manager.Active            { return f.active }
func (f *fakeLifecycle) State() manager.State               { return f.state }
func (f *fakeLifecycle) LastResult() *manager.RefreshResult { return f.last }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNavigationHandler_RedirectErrorStillAnswers(t *testing.T) {
	e := &fakeEnforcer{
		decision: enforcer.Decision{RedirectURL: "warden://blocked"},
		navErr:   &enforcer.RedirectError{TabID: 2, Target: "warden://blocked", Cause: errors.New("push failed")},
	}
	rec := serve(NewNavigationHandler(e, quietLogger()), http.MethodPost, "/v1/navigation", `{"tabId": 2, "url": "https://example.com/"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var d enforcer.Decision
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d.RedirectURL != "warden://blocked" || d.TabID != 2 {
		t.Errorf("Decision = %+v", d)
	}
}

func TestNavigationHandler_InternalError(t *testing.T) {
	e := &fakeEnforcer{navErr: errors.New("boom")}
	rec := serve(NewNavigationHandler(e, quietLogger()), http.MethodPost, "/v1/navigation", `{"tabId": 2, "url": "https://example.com/"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestTabHandler(t *testing.T) {
	e := &fakeEnforcer{}
	mux := http.NewServeMux()
	mux.Handle("DELETE /v1/tabs/{id}", NewTabHandler(e))

	if rec := serve(mux, http.MethodDelete, "/v1/tabs/17", ""); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec := serve(mux, http.MethodDelete, "/v1/tabs/x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(e.closed) != 1 || e.closed[0] != 17 {
		t.Errorf("closed = %v, want [17]", e.closed)
	}
}

func TestMessageHandler(t *testing.T) {
	e := &fakeEnforcer{resp: &enforcer.Response{Response: []model.PolicyAction{{Category: "ads", Action: model.ActionWarn}}}}
	h := NewMessageHandler(e)

	rec := serve(h, http.MethodPost, "/v1/messages", `{"sender": {"tabId": 1}, "message": {"category": "REQUEST_MESSAGE"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := e.lastMsg.(enforcer.RequestMessage); !ok {
		t.Errorf("message = %T, want RequestMessage", e.lastMsg)
	}
	if !strings.Contains(rec.Body.String(), `"category":"ads"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = serve(h, http.MethodPost, "/v1/messages", `{"sender": {}, "message": {}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing category status = %d, want 400", rec.Code)
	}
}

func TestMessageErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("x: %w", enforcer.ErrUnknownCategory), http.StatusBadRequest, CodeUnknownCategory},
		{enforcer.ErrInvalidDuration, http.StatusBadRequest, CodeInvalidDuration},
		{enforcer.ErrInvalidSender, http.StatusBadRequest, CodeInvalidSender},
		{enforcer.ErrMalformedMessage, http.StatusBadRequest, CodeInvalidRequest},
		{errors.New("other"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := messageErrorStatus(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("messageErrorStatus(%v) = %d, %s, want %d, %s", tt.err, status, code, tt.status, tt.code)
			}
		})
	}
}

func TestRefreshHandler_Error(t *testing.T) {
	l := &fakeLifecycle{err: context.Canceled}
	rec := serve(NewRefreshHandler(l), http.MethodPost, "/v1/refresh", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestConfigHandler_BeforeActivation(t *testing.T) {
	l := &fakeLifecycle{state: manager.StateUninitialized}
	rec := serve(NewConfigHandler(l), http.MethodGet, "/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var cr ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cr); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cr.State != "uninitialized" || cr.Summary != nil || cr.ActivatedAt != nil {
		t.Errorf("ConfigResponse = %+v", cr)
	}
}

func TestReadyHandler(t *testing.T) {
	l := &fakeLifecycle{state: manager.StateLoading}
	if rec := serve(NewReadyHandler(l, nil), http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	l.state = manager.StateActive
	l.active = &manager.Active{Summary: model.NewPolicySummary(nil, nil), Version: 3, Origin: manager.OriginSnapshot}
	l.last = &manager.RefreshResult{Outcome: manager.OutcomeFallback}
	rec := serve(NewReadyHandler(l, nil), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["origin"] != "snapshot" || body["version"] != float64(3) {
		t.Errorf("body = %v", body)
	}
}

func TestHub_RedirectWithoutClients(t *testing.T) {
	hub := NewHub(quietLogger())
	if err := hub.Redirect(context.Background(), 1, "warden://blocked"); err != nil {
		t.Errorf("Redirect() error = %v, want nil", err)
	}
	if hub.Len() != 0 {
		t.Errorf("Len() = %d, want 0", hub.Len())
	}
	hub.Close()
}

func TestReadyHandler_Degraded(t *testing.T) {
	l := &fakeLifecycle{
		state:  manager.StateActive,
		active: &manager.Active{Summary: model.NewPolicySummary(nil, nil), Version: 1, Origin: manager.OriginRemote},
	}
	checker := health.New(time.Second)
	checker.Register("snapshot_store", func(context.Context) error { return errors.New("connection refused") })

	rec := serve(NewReadyHandler(l, checker), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status string                        `json:"status"`
		Checks map[string]health.CheckResult `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if body.Status != "degraded" || body.Checks["snapshot_store"].Message != "connection refused" {
		t.Errorf("body = %+v", body)
	}
}
