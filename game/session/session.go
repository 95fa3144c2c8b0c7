package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/protocol"
	"github.com/astroturfstudio/quizzi-go/pubsub"
	transport "github.com/astroturfstudio/quizzi-go/transport/websocket"
)

// Session owns exactly one logical duplex connection to the game server.
type Session struct {
	dialer transport.Dialer
	policy ReconnectPolicy
	log    zerolog.Logger

	messages *pubsub.Feed[protocol.ServerMessage]
	status   *pubsub.Feed[ConnectionState]

	mu           sync.Mutex
	conn         transport.Conn
	playerID     string
	ctx          context.Context
	cancel       context.CancelFunc
	connecting   bool
	reconnecting bool
	attempt      int
	closed       bool
}

// New creates a session that dials through the given dialer and reconnects
// per the given policy.
func New(dialer transport.Dialer, policy ReconnectPolicy, log zerolog.Logger) *Session {
	s := &Session{
		dialer:   dialer,
		policy:   policy,
		log:      log,
		messages: pubsub.NewFeed[protocol.ServerMessage](64),
		status:   pubsub.NewFeed[ConnectionState](16),
	}
	s.status.Publish(ConnectionState{Status: StatusIdle})
	return s
}

// Connect begins connecting and returns immediately. A non-empty playerID is
// recorded for rejoin correlation on later redials. Calling Connect while a
// connection exists or is being established only updates the recorded id.
func (s *Session) Connect(playerID string) {
	s.mu.Lock()
	if playerID != "" {
		s.playerID = playerID
	}
	if s.conn != nil || s.connecting || s.reconnecting {
		s.mu.Unlock()
		return
	}
	s.connecting = true
	s.closed = false
	s.attempt = 0
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx, s.cancel = ctx, cancel
	pid := s.playerID
	s.mu.Unlock()

	s.status.Publish(ConnectionState{Status: StatusConnecting})

	go func() {
		conn, err := s.dialer.Dial(ctx, pid)

		s.mu.Lock()
		s.connecting = false
		if s.closed || ctx.Err() != nil {
			s.mu.Unlock()
			if err == nil {
				conn.Close()
			}
			return
		}
		if err != nil {
			s.mu.Unlock()
			s.log.Error().Err(err).Msg("initial connect failed")
			s.startReconnect(ctx)
			return
		}
		s.conn = conn
		s.mu.Unlock()

		s.status.Publish(ConnectionState{Status: StatusConnected})
		go s.readLoop(ctx, conn)
		go s.pingLoop(ctx, conn)
	}()
}

// Send encodes and transmits a client message. If the transport is not open
// the message is dropped: callers needing confirmation wait for the server's
// echo (AnswerResult, JoinedRoom) on the message stream.
func (s *Session) Send(m protocol.ClientMessage) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		s.log.Debug().Str("type", string(m.MessageType())).Msg("transport not open, dropping outbound message")
		return
	}

	data, err := protocol.Encode(m)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(m.MessageType())).Msg("failed to encode outbound message")
		return
	}

	if err := conn.Write(data); err != nil {
		// The read loop observes the broken transport and drives reconnection.
		s.log.Warn().Err(err).Str("type", string(m.MessageType())).Msg("failed to write outbound message")
	}
}

// Disconnect closes the transport with the normal closure code, cancels any
// in-flight reconnection timer, and publishes Idle. Idempotent. Explicit
// disconnects never trigger reconnection.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.closed && s.conn == nil && !s.connecting && !s.reconnecting {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	conn := s.conn
	s.conn = nil
	s.attempt = 0
	s.reconnecting = false
	s.mu.Unlock()

	if conn != nil {
		conn.CloseNormal()
	}
	s.status.Publish(ConnectionState{Status: StatusIdle})
}

// Close disconnects and tears down both streams. The session cannot be
// reused afterwards.
func (s *Session) Close() {
	s.Disconnect()
	s.messages.Close()
	s.status.Close()
}

// Messages returns a subscription to the inbound server message stream. The
// most recent message is replayed to new subscribers; decode failures arrive
// as protocol.Error values instead of terminating the stream.
func (s *Session) Messages() (<-chan protocol.ServerMessage, func()) {
	return s.messages.Subscribe()
}

// Status returns a subscription to the connection status stream. Every
// subscriber immediately receives the current status.
func (s *Session) Status() (<-chan ConnectionState, func()) {
	return s.status.Subscribe()
}

// CurrentStatus returns the latest published connection state.
func (s *Session) CurrentStatus() ConnectionState {
	state, _ := s.status.Latest()
	return state
}

// PlayerID returns the player id recorded for rejoin correlation.
func (s *Session) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// readLoop pumps inbound frames from one physical connection until it fails
// or the session is torn down.
func (s *Session) readLoop(ctx context.Context, conn transport.Conn) {
	for {
		data, err := conn.Read()
		if err == nil {
			msg, derr := protocol.DecodeServer(data)
			if derr != nil {
				s.log.Error().Err(derr).Msg("failed to decode server frame")
				s.messages.Publish(protocol.Error{Message: derr.Error()})
				continue
			}
			s.messages.Publish(msg)
			continue
		}

		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed || ctx.Err() != nil {
			return
		}
		if transport.IsNormalClosure(err) {
			// Intentional close from the server side; do not reconnect.
			s.status.Publish(ConnectionState{Status: StatusIdle})
			return
		}

		s.log.Warn().Err(err).Msg("transport closed abnormally")
		s.startReconnect(ctx)
		return
	}
}

// pingLoop keeps the connection alive. Ping failures are left to the read
// loop, which observes the broken transport.
func (s *Session) pingLoop(ctx context.Context, conn transport.Conn) {
	ticker := time.NewTicker(transport.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

// startReconnect enters the reconnection loop unless one is already in
// flight or the session was explicitly disconnected.
func (s *Session) startReconnect(ctx context.Context) {
	s.mu.Lock()
	if s.reconnecting || s.closed {
		s.mu.Unlock()
		return
	}
	s.reconnecting = true
	s.mu.Unlock()

	go s.reconnectLoop(ctx)
}

func (s *Session) reconnectLoop(ctx context.Context) {
	for {
		s.mu.Lock()
		s.attempt++
		attempt := s.attempt
		playerID := s.playerID
		s.mu.Unlock()

		s.status.Publish(ConnectionState{Status: StatusReconnecting, Attempt: attempt})

		timer := time.NewTimer(s.policy.DelayForAttempt(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.resetReconnect()
			return
		case <-timer.C:
		}

		conn, err := s.dialer.Dial(ctx, playerID)
		if err == nil {
			s.mu.Lock()
			if s.closed || ctx.Err() != nil {
				s.mu.Unlock()
				conn.Close()
				s.resetReconnect()
				return
			}
			s.conn = conn
			s.attempt = 0
			s.reconnecting = false
			s.mu.Unlock()

			s.log.Info().Int("attempts", attempt).Msg("reconnected")
			s.Send(protocol.PlayerReconnect{PlayerID: playerID})
			s.status.Publish(ConnectionState{Status: StatusConnected})
			go s.readLoop(ctx, conn)
			go s.pingLoop(ctx, conn)
			return
		}

		s.log.Warn().Err(err).Int("attempt", attempt).Msg("reconnection attempt failed")

		if attempt >= s.policy.MaxAttempts {
			s.resetReconnect()
			s.status.Publish(ConnectionState{Status: StatusFailed, Reason: err.Error()})
			// Let downstream react to the lost session without any
			// transport-level knowledge.
			s.messages.Publish(protocol.PlayerDisconnected{PlayerID: playerID})
			return
		}
	}
}

// resetReconnect clears the guard flag and the attempt counter together.
func (s *Session) resetReconnect() {
	s.mu.Lock()
	s.attempt = 0
	s.reconnecting = false
	s.mu.Unlock()
}
