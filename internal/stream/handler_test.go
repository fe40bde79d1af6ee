package stream

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"campus-energy/internal/auth"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := hub.Count(); got != want {
		t.Fatalf("subscriber count = %d, want %d", got, want)
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	hub := NewHub(testLogger())
	handler, err := NewWSHandler(hub, testLogger())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForCount(t, hub, 1)

	payload := []byte(`{"type":"sensor_update","timestamp":"2026-03-14T12:00:00Z"}`)
	hub.Broadcast(payload)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("received %q, want %q", got, payload)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	waitForCount(t, hub, 0)
}

func TestWebsocketRejectsNonGet(t *testing.T) {
	hub := NewHub(testLogger())
	handler, err := NewWSHandler(hub, testLogger())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
	if hub.Count() != 0 {
		t.Fatalf("count = %d after rejected request, want 0", hub.Count())
	}
}

func TestWebsocketTokenGate(t *testing.T) {
	secret := []byte("test-secret")
	hub := NewHub(testLogger())
	handler, err := NewWSHandler(hub, testLogger(), WithAuthSecret(secret))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil); err == nil {
		t.Fatal("handshake without token should fail")
	} else if resp != nil {
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	}
	if hub.Count() != 0 {
		t.Fatalf("count = %d after rejected handshake, want 0", hub.Count())
	}

	claims := auth.Claims{
		TenantID: "bmu",
		Role:     "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	defer conn.Close()
	waitForCount(t, hub, 1)
}

func TestClientTrySendSkipsWhenBufferFull(t *testing.T) {
	client := NewClient(NewHub(testLogger()), nil, testLogger())
	for i := 0; i < sendBuffer; i++ {
		if !client.TrySend([]byte("tick")) {
			t.Fatalf("send %d refused below capacity", i)
		}
	}
	// Channel full and no pump draining: the broadcast path must see false
	// and skip this client instead of blocking.
	if client.TrySend([]byte("tick")) {
		t.Fatal("send above capacity should report not writable")
	}
}

func TestWebsocketSubscribersShareOneBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	handler, err := NewWSHandler(hub, testLogger())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler)
	defer server.Close()

	first, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()
	waitForCount(t, hub, 2)

	payload := []byte(`{"type":"alert","alert":{"message":"Battery level critically low"}}`)
	hub.Broadcast(payload)

	for i, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, got, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("subscriber %d read: %v", i, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("subscriber %d received %q, want %q", i, got, payload)
		}
	}
}
