package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/game/engine"
	"github.com/astroturfstudio/quizzi-go/game/session"
	"github.com/astroturfstudio/quizzi-go/protocol"
	transport "github.com/astroturfstudio/quizzi-go/transport/websocket"
)

// loopConn is a scriptable in-memory connection.
type loopConn struct {
	inbound   chan []byte
	closeOnce sync.Once

	mu      sync.Mutex
	written []string
}

func newLoopConn() *loopConn {
	return &loopConn{inbound: make(chan []byte, 16)}
}

func (c *loopConn) Read() ([]byte, error) {
	data, ok := <-c.inbound
	if !ok {
		return nil, os.ErrClosed
	}
	return data, nil
}

func (c *loopConn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, string(data))
	return nil
}

func (c *loopConn) Ping() error { return nil }

func (c *loopConn) CloseNormal() error { return c.Close() }

func (c *loopConn) Close() error {
	c.closeOnce.Do(func() { close(c.inbound) })
	return nil
}

func (c *loopConn) frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

type loopDialer struct {
	mu    sync.Mutex
	conns []*loopConn
	ids   []string
}

func (d *loopDialer) Dial(ctx context.Context, playerID string) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := newLoopConn()
	d.conns = append(d.conns, conn)
	d.ids = append(d.ids, playerID)
	return conn, nil
}

func newTestClient(t *testing.T) (*Client, *loopDialer) {
	t.Helper()
	dialer := &loopDialer{}
	sess := session.New(dialer, session.DefaultPolicy(), zerolog.Nop())
	machine := engine.New(nil, sess, zerolog.Nop())
	client := newClientWith(sess, machine, &MemoryIdentityStore{}, zerolog.Nop())
	t.Cleanup(client.Close)
	return client, dialer
}

func waitConnected(t *testing.T, c *Client) {
	t.Helper()
	status, cancel := c.ConnectionStatus()
	defer cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-status:
			if st.Status == session.StatusConnected {
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for connection")
		}
	}
}

func TestStartConnectsWithStoredIdentity(t *testing.T) {
	client, dialer := newTestClient(t)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start client: %v", err)
	}
	waitConnected(t, client)

	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	if len(dialer.ids) != 1 || dialer.ids[0] == "" {
		t.Errorf("Expected dial with generated player id, got %v", dialer.ids)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	client, dialer := newTestClient(t)

	client.Start(context.Background())
	waitConnected(t, client)
	client.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	if len(dialer.conns) != 1 {
		t.Errorf("Expected a single connection, got %d", len(dialer.conns))
	}
}

func TestOperationsEncodeExpectedFrames(t *testing.T) {
	client, dialer := newTestClient(t)
	client.Start(context.Background())
	waitConnected(t, client)

	client.CreateRoom("Trivia Night", "science", "classic")
	client.JoinRoom("r-1")
	client.RejoinRoom("r-1")
	client.PlayerReady()
	client.SubmitAnswer(2)

	dialer.mu.Lock()
	conn := dialer.conns[0]
	dialer.mu.Unlock()

	frames := conn.frames()
	if len(frames) != 5 {
		t.Fatalf("Expected 5 outbound frames, got %d: %v", len(frames), frames)
	}

	expected := []string{
		`"type":"create_room"`,
		`"type":"join_room"`,
		`"type":"rejoin_room"`,
		`"type":"player_ready"`,
		`"type":"player_answer"`,
	}
	for i, want := range expected {
		if !strings.Contains(frames[i], want) {
			t.Errorf("Expected frame %d to contain %s, got %s", i, want, frames[i])
		}
	}
	if !strings.Contains(frames[4], `"answerId":2`) {
		t.Errorf("Expected answer id in frame, got %s", frames[4])
	}
}

func TestServerMessagesFlowIntoStateAndEffects(t *testing.T) {
	client, dialer := newTestClient(t)

	states, cancelStates := client.States()
	defer cancelStates()
	effects, cancelEffects := client.Effects()
	defer cancelEffects()

	client.Start(context.Background())
	waitConnected(t, client)

	dialer.mu.Lock()
	conn := dialer.conns[0]
	dialer.mu.Unlock()

	frame, _ := protocol.Encode(protocol.RoomCreated{RoomID: "r-9"})
	conn.inbound <- frame
	frame, _ = protocol.Encode(protocol.RoomUpdate{State: protocol.TagWaiting, Players: []protocol.Player{{ID: "p", Name: "Ada"}}})
	conn.inbound <- frame

	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-effects:
			if e.Kind != engine.EffectRoomCreated {
				t.Errorf("Expected room created effect, got %v", e.Kind)
			}
		case st := <-states:
			if st.Phase == engine.PhaseWaiting {
				if len(st.Players) != 1 || st.Players[0].Name != "Ada" {
					t.Errorf("Expected roster with Ada, got %v", st.Players)
				}
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for state update")
		}
	}
}

func TestFileIdentityStoreIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity", "player.json")

	store := NewFileIdentityStore(path)
	first, err := store.PlayerID()
	if err != nil {
		t.Fatalf("Failed to create identity: %v", err)
	}
	if first == "" {
		t.Fatal("Expected non-empty player id")
	}

	// A fresh store over the same file yields the same id.
	again, err := NewFileIdentityStore(path).PlayerID()
	if err != nil {
		t.Fatalf("Failed to reload identity: %v", err)
	}
	if again != first {
		t.Errorf("Expected stable identity %q, got %q", first, again)
	}
}

func TestFileIdentityStoreRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("Failed to seed corrupt file: %v", err)
	}

	id, err := NewFileIdentityStore(path).PlayerID()
	if err != nil {
		t.Fatalf("Failed to recover from corrupt identity file: %v", err)
	}
	if id == "" {
		t.Error("Expected regenerated player id")
	}
}
