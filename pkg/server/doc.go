// Package server is the host bridge between the browser runtime and the
// enforcer.
//
// The browser host reports navigations and tab closures over HTTP, the
// in-page UI exchanges tagged messages over HTTP or a WebSocket, and
// operators inspect or refresh the active policy.
//
// # Routes
//
//	POST   /v1/navigation   evaluate a navigation, returns the Decision
//	DELETE /v1/tabs/{id}    forget a closed tab
//	POST   /v1/messages     {sender, message} UI message
//	GET    /v1/ws           WebSocket: UI messages in, redirect commands out
//	POST   /v1/refresh      run a configuration refresh now
//	GET    /v1/config       the active configuration
//	GET    /healthz         liveness
//	GET    /readyz          ready once a configuration is active
//	GET    /metrics         Prometheus metrics (when enabled)
//
// # Redirects
//
// A navigation that hits a block_page action is answered with the block
// page in Decision.RedirectURL. The Hub additionally pushes
//
//	{"type": "redirect", "tabId": 7, "url": "warden://blocked"}
//
// to every connected WebSocket host, so a host that reports navigations
// asynchronously can still act on them.
//
// # Usage
//
//	srv, err := server.New(cfg.Server, cfg.Telemetry.Metrics, server.Deps{
//	    Enforcer:  enf,
//	    Lifecycle: mgr,
//	    Metrics:   collector,
//	    Logger:    logger,
//	})
//	enf.SetRedirector(srv.Hub())
//	err = srv.Start(ctx) // blocks until ctx is canceled
package server
