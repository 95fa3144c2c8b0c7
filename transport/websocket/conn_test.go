package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startEchoServer runs a test endpoint that records the request and echoes
// frames back until the client closes.
func startEchoServer(t *testing.T) (*httptest.Server, chan *http.Request) {
	t.Helper()

	requests := make(chan *http.Request, 1)
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			mt, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func TestDialTargetsGamePathWithPlayerID(t *testing.T) {
	srv, requests := startEchoServer(t)

	dialer := NewDialer(srv.URL) // http scheme, must be rewritten to ws
	conn, err := dialer.Dial(context.Background(), "p-123")
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	r := <-requests
	if r.URL.Path != GamePath {
		t.Errorf("Expected path %q, got %q", GamePath, r.URL.Path)
	}
	if got := r.URL.Query().Get("playerId"); got != "p-123" {
		t.Errorf("Expected playerId query p-123, got %q", got)
	}
}

func TestDialOmitsEmptyPlayerID(t *testing.T) {
	srv, requests := startEchoServer(t)

	dialer := NewDialer(srv.URL)
	conn, err := dialer.Dial(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	r := <-requests
	if _, present := r.URL.Query()["playerId"]; present {
		t.Error("Expected no playerId query parameter for anonymous connect")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	srv, _ := startEchoServer(t)

	dialer := NewDialer(srv.URL)
	conn, err := dialer.Dial(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	if err := conn.Write([]byte(`{"type":"player_ready"}`)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	data, err := conn.Read()
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(data) != `{"type":"player_ready"}` {
		t.Errorf("Expected echoed frame, got %s", data)
	}
}

func TestCloseNormalIsSeenAsNormalClosure(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	readErr := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		_, _, err = ws.ReadMessage()
		readErr <- err
	}))
	defer srv.Close()

	dialer := NewDialer(srv.URL)
	conn, err := dialer.Dial(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}

	if err := conn.CloseNormal(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	select {
	case err := <-readErr:
		if !IsNormalClosure(err) {
			t.Errorf("Expected server to observe normal closure, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for server to observe closure")
	}
}

func TestDialRejectsUnsupportedScheme(t *testing.T) {
	dialer := NewDialer("ftp://example.com")
	if _, err := dialer.Dial(context.Background(), "p-1"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}
