package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/game/config"
	"github.com/astroturfstudio/quizzi-go/game/engine"
	"github.com/astroturfstudio/quizzi-go/game/session"
	"github.com/astroturfstudio/quizzi-go/protocol"
	"github.com/astroturfstudio/quizzi-go/ratelimit"
	transport "github.com/astroturfstudio/quizzi-go/transport/websocket"
)

// Client is the quiz client facade: one session, one state machine, and the
// operations the UI layer calls.
type Client struct {
	log      zerolog.Logger
	session  *session.Session
	machine  *engine.Machine
	identity IdentityStore

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewClient builds a fully wired client from configuration, persisting the
// player identity at cfg.IdentityFile.
func NewClient(cfg *config.Config, log zerolog.Logger) (*Client, error) {
	return NewClientWithIdentity(cfg, nil, log)
}

// NewClientWithIdentity builds a client with an explicit identity store. A
// nil store falls back to the file store at cfg.IdentityFile. Bots use this
// with MemoryIdentityStore so each instance gets a fresh player id.
func NewClientWithIdentity(cfg *config.Config, identity IdentityStore, log zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if identity == nil {
		identity = NewFileIdentityStore(cfg.IdentityFile)
	}

	dialer := transport.NewDialer(cfg.ServerURL)
	sess := session.New(dialer, cfg.ReconnectPolicy(), log)
	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimitWindow())
	machine := engine.New(limiter, sess, log)

	return &Client{
		log:      log,
		session:  sess,
		machine:  machine,
		identity: identity,
	}, nil
}

// newClientWith assembles a client from explicit parts; used by bots and
// tests that supply their own transport or identity.
func newClientWith(sess *session.Session, machine *engine.Machine, identity IdentityStore, log zerolog.Logger) *Client {
	return &Client{
		log:      log,
		session:  sess,
		machine:  machine,
		identity: identity,
	}
}

// Start resolves the player identity, starts the state machine pump, and
// begins connecting. It returns immediately; progress is observable on the
// status stream.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	playerID, err := c.identity.PlayerID()
	if err != nil {
		return fmt.Errorf("failed to resolve player identity: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	msgs, cancelMsgs := c.session.Messages()
	status, cancelStatus := c.session.Status()
	go func() {
		defer cancelMsgs()
		defer cancelStatus()
		c.machine.Run(runCtx, msgs, status)
	}()

	c.session.Connect(playerID)
	return nil
}

// CreateRoom asks the server to open a new room.
func (c *Client) CreateRoom(roomName, categoryID, gameType string) {
	c.session.Send(protocol.CreateRoom{
		RoomName:   roomName,
		CategoryID: categoryID,
		GameType:   gameType,
	})
}

// JoinRoom joins an existing room.
func (c *Client) JoinRoom(roomID string) {
	c.session.Send(protocol.JoinRoom{RoomID: roomID})
}

// RejoinRoom re-associates this player with a room after a reconnect.
func (c *Client) RejoinRoom(roomID string) {
	c.session.Send(protocol.RejoinRoom{RoomID: roomID})
}

// PlayerReady signals readiness to start.
func (c *Client) PlayerReady() {
	c.session.Send(protocol.PlayerReady{})
}

// SubmitAnswer submits the player's answer for the current round.
func (c *Client) SubmitAnswer(answerID int) {
	c.session.Send(protocol.PlayerAnswer{AnswerID: answerID})
}

// States returns a subscription to the room state stream (replay-latest).
func (c *Client) States() (<-chan engine.RoomState, func()) {
	return c.machine.States()
}

// Effects returns a subscription to the one-shot effect stream.
func (c *Client) Effects() (<-chan engine.Effect, func()) {
	return c.machine.Effects()
}

// ConnectionStatus returns a subscription to the connection status stream.
func (c *Client) ConnectionStatus() (<-chan session.ConnectionState, func()) {
	return c.session.Status()
}

// RoomState returns a snapshot of the current room state.
func (c *Client) RoomState() engine.RoomState {
	return c.machine.State()
}

// Close disconnects and releases all streams and background tasks.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.session.Close()
	c.machine.Close()
}
