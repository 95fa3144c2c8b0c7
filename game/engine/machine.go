package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/game/session"
	"github.com/astroturfstudio/quizzi-go/protocol"
	"github.com/astroturfstudio/quizzi-go/pubsub"
	"github.com/astroturfstudio/quizzi-go/ratelimit"
)

// Sender transmits client messages; satisfied by *session.Session.
type Sender interface {
	Send(m protocol.ClientMessage)
}

// Machine is the room state machine. It consumes the rate-limited inbound
// message stream plus the connection status stream and produces a
// replay-latest RoomState stream and a fire-once Effect stream.
type Machine struct {
	limiter *ratelimit.Limiter
	sender  Sender
	log     zerolog.Logger

	states  *pubsub.Feed[RoomState]
	effects *pubsub.Bus[Effect]

	mu              sync.Mutex
	current         RoomState
	lastRoomID      string
	wasReconnecting bool
}

// New creates a machine in the Idle state. A nil limiter defaults to 60
// messages per second.
func New(limiter *ratelimit.Limiter, sender Sender, log zerolog.Logger) *Machine {
	if limiter == nil {
		limiter = ratelimit.New(60, time.Second)
	}
	m := &Machine{
		limiter: limiter,
		sender:  sender,
		log:     log,
		states:  pubsub.NewFeed[RoomState](16),
		effects: pubsub.NewBus[Effect](256),
	}
	m.states.Publish(RoomState{Phase: PhaseIdle})
	return m
}

// Run drains the message and status streams until ctx is cancelled or both
// streams close. Items are processed strictly sequentially in arrival order;
// messages rejected by the rate limiter are dropped silently.
func (m *Machine) Run(ctx context.Context, msgs <-chan protocol.ServerMessage, status <-chan session.ConnectionState) {
	for msgs != nil || status != nil {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			if !m.limiter.TryAcquire() {
				continue
			}
			m.handleMessage(msg)
		case st, ok := <-status:
			if !ok {
				status = nil
				continue
			}
			m.handleStatus(st)
		}
	}
}

// States returns a subscription to the room state stream. The current state
// is replayed to new subscribers.
func (m *Machine) States() (<-chan RoomState, func()) {
	return m.states.Subscribe()
}

// Effects returns a subscription to the effect stream. Past effects are not
// replayed.
func (m *Machine) Effects() (<-chan Effect, func()) {
	return m.effects.Subscribe()
}

// State returns a snapshot of the current room state.
func (m *Machine) State() RoomState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return RoomState{Phase: m.current.Phase, Players: clonePlayers(m.current.Players)}
}

// LastRoomID returns the room id most recently confirmed by the server.
func (m *Machine) LastRoomID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRoomID
}

// Close tears down both output streams.
func (m *Machine) Close() {
	m.states.Close()
	m.effects.Close()
}

// handleMessage performs one full reduction step: the state mutation (if
// any) is committed under the lock, then the resulting publications happen
// outside the critical section.
func (m *Machine) handleMessage(msg protocol.ServerMessage) {
	m.mu.Lock()

	var (
		changed  bool
		snapshot RoomState
	)

	switch v := msg.(type) {
	case protocol.RoomUpdate:
		changed = m.reduceLocked(v)
		if changed {
			snapshot = RoomState{Phase: m.current.Phase, Players: clonePlayers(m.current.Players)}
		}
	case protocol.RoomCreated:
		m.lastRoomID = v.RoomID
	case protocol.JoinedRoom:
		if v.Success {
			m.lastRoomID = v.RoomID
		}
	}
	m.mu.Unlock()

	if changed {
		m.states.Publish(snapshot)
		return
	}

	if kind, ok := effectKindFor(msg); ok {
		m.effects.Publish(Effect{Kind: kind, Msg: msg})
	}
}

// reduceLocked applies a RoomUpdate through the transition table. It reports
// whether the state changed. Callers must hold m.mu.
func (m *Machine) reduceLocked(update protocol.RoomUpdate) bool {
	cur := m.current

	// A repeat of the current phase is a roster refresh, not a transition.
	if tag, named := phaseTags[cur.Phase]; named && tag == update.State {
		if phaseCarriesPlayers[cur.Phase] {
			m.current.Players = clonePlayers(update.Players)
			return true
		}
		return false
	}

	next, valid := transitions[cur.Phase][update.State]
	if !valid {
		m.log.Warn().
			Str("from", cur.Phase.String()).
			Str("to", string(update.State)).
			Msg("invalid room state transition, keeping current state")
		return false
	}

	m.current = RoomState{Phase: next}
	if phaseCarriesPlayers[next] {
		m.current.Players = clonePlayers(update.Players)
	}
	return true
}

// handleStatus watches the connection status stream and re-issues a rejoin
// request on the reconnecting-to-connected edge.
func (m *Machine) handleStatus(st session.ConnectionState) {
	m.mu.Lock()
	rejoin := st.Status == session.StatusConnected && m.wasReconnecting && m.lastRoomID != ""
	roomID := m.lastRoomID
	m.wasReconnecting = st.Status == session.StatusReconnecting
	m.mu.Unlock()

	if rejoin {
		m.log.Info().Str("roomId", roomID).Msg("rejoining room after reconnection")
		m.sender.Send(protocol.RejoinRoom{RoomID: roomID})
	}
}
