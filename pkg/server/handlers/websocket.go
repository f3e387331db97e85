package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mercator-hq/warden/pkg/server/middleware"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsSendBuffer     = 32
	wsMaxMessageSize = 64 << 10
)

// Command is pushed to connected hosts.
type Command struct {
	Type  string `json:"type"`
	TabID int    `json:"tabId"`
	URL   string `json:"url"`
}

// Reply answers an inbound WebSocket message. Data holds what POST
// /v1/messages would return.
type Reply struct {
	ID    string       `json:"id,omitempty"`
	Data  any          `json:"data"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
		quit: make(chan struct{}),
	}
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.quit) })
}

// trySend queues data without blocking. It reports false when the client
// is closed or its buffer is full.
func (c *wsClient) trySend(data []byte) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks WebSocket connections and pushes redirect commands to them.
// It implements enforcer.Redirector.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, clients: make(map[*wsClient]struct{})}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Redirect pushes a redirect command to every connected host. With no
// host connected it does nothing; the navigation response still carries
// the redirect target.
func (h *Hub) Redirect(ctx context.Context, tabID int, target string) error {
	data, err := json.Marshal(Command{Type: "redirect", TabID: tabID, URL: target})
	if err != nil {
		return err
	}
	h.broadcast(ctx, data)
	return nil
}

func (h *Hub) broadcast(ctx context.Context, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.trySend(data) {
			h.logger.WarnContext(ctx, "dropping slow websocket client")
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// WebSocketHandler handles GET /v1/ws. Inbound frames are MessageRequests
// answered with a Reply; redirect Commands are pushed as they happen.
type WebSocketHandler struct {
	Enforcer Enforcer
	Hub      *Hub
	Logger   *slog.Logger

	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a WebSocket handler accepting the given
// origins.
func NewWebSocketHandler(e Enforcer, hub *Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		Enforcer: e,
		Hub:      hub,
		Logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(origin, allowedOrigins)
			},
		},
	}
}

// ServeHTTP upgrades the connection and serves it until either side closes.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := newWSClient(conn)
	h.Hub.add(c)
	h.Logger.InfoContext(r.Context(), "websocket connected", "remote_addr", r.RemoteAddr, "clients", h.Hub.Len())

	// The request context ends when the handler returns, so frames are
	// served with a detached one that keeps the request ID.
	ctx := context.WithoutCancel(r.Context())

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()

	h.readLoop(ctx, c)
	h.Hub.remove(c)
	c.close()
	<-done
	h.Logger.InfoContext(ctx, "websocket disconnected", "remote_addr", r.RemoteAddr)
}

func (h *WebSocketHandler) readLoop(ctx context.Context, c *wsClient) {
	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.WarnContext(ctx, "websocket read failed", "error", err)
			}
			return
		}

		reply := h.handleFrame(ctx, data)
		out, err := json.Marshal(reply)
		if err != nil {
			h.Logger.ErrorContext(ctx, "failed to encode websocket reply", "error", err)
			continue
		}

		if !c.trySend(out) {
			h.Logger.WarnContext(ctx, "websocket client closed or too slow")
			return
		}
	}
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, data []byte) Reply {
	var req MessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return Reply{Error: &ErrorDetail{Message: "invalid JSON frame: " + err.Error(), Code: CodeInvalidRequest}}
	}

	reply := Reply{ID: req.ID}
	msg, err := req.Message.Decode()
	if err != nil {
		_, code := messageErrorStatus(err)
		reply.Error = &ErrorDetail{Message: err.Error(), Code: code}
		return reply
	}

	resp, err := h.Enforcer.HandleMessage(ctx, req.Sender, msg)
	if err != nil {
		_, code := messageErrorStatus(err)
		reply.Error = &ErrorDetail{Message: err.Error(), Code: code}
		return reply
	}
	if resp != nil {
		reply.Data = resp
	}
	return reply
}

// writeLoop owns all writes to the connection and closes it on exit, which
// also ends a blocked readLoop.
func (h *WebSocketHandler) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
