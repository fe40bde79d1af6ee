package stream

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"campus-energy/internal/auth"
)

// WSHandler upgrades HTTP requests into hub subscriptions.
type WSHandler struct {
	hub      *Hub
	logger   *log.Logger
	secret   []byte
	upgrader websocket.Upgrader
}

// WSHandlerOption customizes the handler.
type WSHandlerOption func(*WSHandler)

// WithAuthSecret requires a valid JWT in the token query parameter. The
// observed transport carries no channel auth; this closes that gap when a
// secret is configured.
func WithAuthSecret(secret []byte) WSHandlerOption {
	return func(h *WSHandler) {
		h.secret = secret
	}
}

// NewWSHandler constructs the upgrade handler.
func NewWSHandler(hub *Hub, logger *log.Logger, opts ...WSHandlerOption) (*WSHandler, error) {
	if hub == nil {
		return nil, errors.New("stream: nil hub")
	}
	if logger == nil {
		return nil, errors.New("stream: nil logger")
	}
	handler := &WSHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(handler)
	}
	return handler, nil
}

// ServeHTTP handles GET /ws.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if len(h.secret) > 0 {
		if _, err := auth.ParseJWT(r.URL.Query().Get("token"), h.secret); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("stream: upgrade failed: %v", err)
		return
	}
	client := NewClient(h.hub, conn, h.logger)
	h.hub.OnConnect(client)
	go client.WritePump()
	go client.ReadPump()
}
