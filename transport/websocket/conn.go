package websocket

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	PingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// GamePath is the fixed path segment of the game endpoint.
	GamePath = "/game"
)

// Conn is a single duplex connection to the game server.
type Conn interface {
	// Read blocks until the next text frame arrives.
	Read() ([]byte, error)

	// Write sends a text frame under the write deadline.
	Write(data []byte) error

	// Ping sends a keepalive probe.
	Ping() error

	// CloseNormal performs the normal-closure handshake (code 1000) and
	// releases the connection.
	CloseNormal() error

	// Close releases the connection without a closure handshake.
	Close() error
}

// Dialer opens connections to the game endpoint.
type Dialer interface {
	Dial(ctx context.Context, playerID string) (Conn, error)
}

// GameDialer dials the game endpoint of a fixed base URL using
// gorilla/websocket.
type GameDialer struct {
	baseURL string
	dialer  *websocket.Dialer
}

// NewDialer creates a dialer for the given base URL. The URL may use the
// ws, wss, http, or https scheme.
func NewDialer(baseURL string) *GameDialer {
	return &GameDialer{
		baseURL: baseURL,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	}
}

// Dial opens a connection to baseURL + "/game". A non-empty playerID is
// attached as the playerId query parameter for rejoin correlation.
func (d *GameDialer) Dial(ctx context.Context, playerID string) (Conn, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", d.baseURL, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + GamePath
	if playerID != "" {
		q := u.Query()
		q.Set("playerId", playerID)
		u.RawQuery = q.Encode()
	}

	ws, resp, err := d.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", u.String(), err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return &gameConn{ws: ws}, nil
}

// gameConn wraps a gorilla connection with serialized writes.
type gameConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *gameConn) Read() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *gameConn) Write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *gameConn) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *gameConn) CloseNormal() error {
	c.writeMu.Lock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return c.ws.Close()
}

func (c *gameConn) Close() error {
	return c.ws.Close()
}

// IsNormalClosure reports whether a read error represents an intentional
// close (code 1000). Every other failure is abnormal and subject to the
// reconnection policy.
func IsNormalClosure(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure)
}
