package viewer

import (
	"context"

	"github.com/gorilla/websocket"
)

// WebsocketDialer adapts gorilla/websocket to the agent's Dialer.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer constructs a dialer with default options.
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{dialer: websocket.DefaultDialer}
}

// Dial opens one connection to the hub.
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) ReadMessage() ([]byte, error) {
	_, payload, err := c.conn.ReadMessage()
	return payload, err
}

func (c *websocketConn) Close() error {
	return c.conn.Close()
}
