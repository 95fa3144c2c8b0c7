package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/game/session"
	"github.com/astroturfstudio/quizzi-go/protocol"
	"github.com/astroturfstudio/quizzi-go/ratelimit"
)

// recordingSender captures outbound client messages.
type recordingSender struct {
	mu   sync.Mutex
	sent []protocol.ClientMessage
}

func (s *recordingSender) Send(m protocol.ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
}

func (s *recordingSender) messages() []protocol.ClientMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.ClientMessage(nil), s.sent...)
}

func newTestMachine() (*Machine, *recordingSender) {
	sender := &recordingSender{}
	return New(ratelimit.New(1000, time.Second), sender, zerolog.Nop()), sender
}

func (m *Machine) setPhase(t *testing.T, phase Phase) {
	t.Helper()
	m.mu.Lock()
	m.current = RoomState{Phase: phase}
	m.mu.Unlock()
}

func players(names ...string) []protocol.Player {
	out := make([]protocol.Player, len(names))
	for i, n := range names {
		out[i] = protocol.Player{ID: "id-" + n, Name: n}
	}
	return out
}

func TestHappyPathScenario(t *testing.T) {
	m, _ := newTestMachine()
	defer m.Close()

	m.handleMessage(protocol.RoomUpdate{State: protocol.TagWaiting, Players: players("A")})
	got := m.State()
	if got.Phase != PhaseWaiting {
		t.Fatalf("Expected waiting phase, got %v", got.Phase)
	}
	if diff := cmp.Diff(players("A"), got.Players); diff != "" {
		t.Errorf("Waiting roster mismatch (-want +got):\n%s", diff)
	}

	m.handleMessage(protocol.RoomUpdate{State: protocol.TagCountdown})
	if got := m.State(); got.Phase != PhaseCountdown {
		t.Fatalf("Expected countdown phase, got %v", got.Phase)
	}

	m.handleMessage(protocol.RoomUpdate{State: protocol.TagPlaying, Players: players("A", "B")})
	got = m.State()
	if got.Phase != PhasePlaying {
		t.Fatalf("Expected playing phase, got %v", got.Phase)
	}
	if diff := cmp.Diff(players("A", "B"), got.Players); diff != "" {
		t.Errorf("Playing roster mismatch (-want +got):\n%s", diff)
	}
}

func TestClosedFromPlayingAndPaused(t *testing.T) {
	for _, from := range []Phase{PhasePlaying, PhasePaused} {
		m, _ := newTestMachine()
		m.setPhase(t, from)

		m.handleMessage(protocol.RoomUpdate{State: protocol.TagClosed, Players: players("A")})
		if got := m.State(); got.Phase != PhaseClosed {
			t.Errorf("Expected closed phase from %v, got %v", from, got.Phase)
		}
		m.Close()
	}
}

func TestInvalidTransitionsRetainStateAndAreIdempotent(t *testing.T) {
	allPhases := []Phase{PhaseIdle, PhaseWaiting, PhaseCountdown, PhasePlaying, PhasePaused, PhaseClosed}
	allTags := []protocol.RoomStateTag{
		protocol.TagWaiting, protocol.TagCountdown, protocol.TagPlaying,
		protocol.TagPaused, protocol.TagClosed,
	}

	for _, phase := range allPhases {
		for _, tag := range allTags {
			if _, valid := transitions[phase][tag]; valid {
				continue
			}
			if named, ok := phaseTags[phase]; ok && named == tag {
				continue // roster refresh, covered separately
			}

			m, _ := newTestMachine()
			m.setPhase(t, phase)
			effects, cancel := m.Effects()

			before := m.State()
			m.handleMessage(protocol.RoomUpdate{State: tag, Players: players("X")})
			m.handleMessage(protocol.RoomUpdate{State: tag, Players: players("X")})
			after := m.State()

			if diff := cmp.Diff(before, after); diff != "" {
				t.Errorf("Invalid pair (%v, %s) changed state (-before +after):\n%s", phase, tag, diff)
			}
			select {
			case e := <-effects:
				t.Errorf("Invalid pair (%v, %s) emitted effect %v", phase, tag, e.Kind)
			default:
			}

			cancel()
			m.Close()
		}
	}
}

func TestRosterRefreshWithinPhase(t *testing.T) {
	m, _ := newTestMachine()
	defer m.Close()
	m.setPhase(t, PhaseWaiting)

	states, cancelStates := m.States()
	defer cancelStates()
	<-states // replayed current state
	effects, cancelEffects := m.Effects()
	defer cancelEffects()

	m.handleMessage(protocol.RoomUpdate{State: protocol.TagWaiting, Players: players("A", "B")})

	select {
	case got := <-states:
		if diff := cmp.Diff(players("A", "B"), got.Players); diff != "" {
			t.Errorf("Roster refresh mismatch (-want +got):\n%s", diff)
		}
		if got.Phase != PhaseWaiting {
			t.Errorf("Expected phase to stay waiting, got %v", got.Phase)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected refreshed state to be published")
	}

	select {
	case e := <-effects:
		t.Errorf("Expected no effect for roster refresh, got %v", e.Kind)
	default:
	}
}

func TestRosterRefreshWithoutPlayersPayloadIsAbsorbed(t *testing.T) {
	m, _ := newTestMachine()
	defer m.Close()
	m.setPhase(t, PhaseCountdown)

	states, cancelStates := m.States()
	defer cancelStates()
	<-states

	m.handleMessage(protocol.RoomUpdate{State: protocol.TagCountdown})

	select {
	case got := <-states:
		t.Errorf("Expected repeated countdown update to be absorbed, got publish %+v", got)
	default:
	}
}

func TestEffectOnlyMessagesDoNotTouchState(t *testing.T) {
	winner := "p-1"
	cases := []struct {
		msg  protocol.ServerMessage
		kind EffectKind
	}{
		{protocol.RoomCreated{RoomID: "r-1"}, EffectRoomCreated},
		{protocol.JoinedRoom{RoomID: "r-1", Success: true}, EffectRoomJoined},
		{protocol.CountdownTimeUpdate{RemainingMs: 3000}, EffectCountdownTick},
		{protocol.TimeUpdate{RemainingMs: 500}, EffectTimeTick},
		{protocol.TimeUp{CorrectAnswerID: 1}, EffectTimeUp},
		{protocol.AnswerResult{PlayerID: "p-1", AnswerID: 1, Correct: true}, EffectAnswerResult},
		{protocol.RoundStarted{RoundNumber: 2}, EffectRoundStarted},
		{protocol.RoundEnded{CorrectAnswerID: 1, WinnerPlayerID: &winner}, EffectRoundEnded},
		{protocol.GameOver{WinnerPlayerID: "p-1"}, EffectGameOver},
		{protocol.PlayerDisconnected{PlayerID: "p-2", PlayerName: "Grace"}, EffectPlayerDisconnected},
		{protocol.PlayerReconnected{PlayerID: "p-2"}, EffectPlayerReconnected},
		{protocol.RoomClosed{Reason: "host left"}, EffectRoomClosed},
		{protocol.Error{Message: "boom"}, EffectError},
	}

	m, _ := newTestMachine()
	defer m.Close()
	m.setPhase(t, PhaseWaiting)

	effects, cancel := m.Effects()
	defer cancel()

	for _, tc := range cases {
		before := m.State()
		m.handleMessage(tc.msg)

		select {
		case e := <-effects:
			if e.Kind != tc.kind {
				t.Errorf("Expected effect %v for %s, got %v", tc.kind, tc.msg.MessageType(), e.Kind)
			}
			if diff := cmp.Diff(tc.msg, e.Msg); diff != "" {
				t.Errorf("Effect payload mismatch for %s (-want +got):\n%s", tc.msg.MessageType(), diff)
			}
		case <-time.After(time.Second):
			t.Fatalf("Expected effect for %s", tc.msg.MessageType())
		}

		if diff := cmp.Diff(before, m.State()); diff != "" {
			t.Errorf("Effect-only message %s changed state (-before +after):\n%s", tc.msg.MessageType(), diff)
		}
	}
}

func TestLastRoomIDTracking(t *testing.T) {
	m, _ := newTestMachine()
	defer m.Close()

	m.handleMessage(protocol.RoomCreated{RoomID: "r-1"})
	if m.LastRoomID() != "r-1" {
		t.Errorf("Expected last room id r-1, got %q", m.LastRoomID())
	}

	m.handleMessage(protocol.JoinedRoom{RoomID: "r-2", Success: true})
	if m.LastRoomID() != "r-2" {
		t.Errorf("Expected last room id r-2, got %q", m.LastRoomID())
	}

	m.handleMessage(protocol.JoinedRoom{RoomID: "r-3", Success: false})
	if m.LastRoomID() != "r-2" {
		t.Errorf("Expected failed join to be ignored, got %q", m.LastRoomID())
	}
}

func TestRejoinAfterReconnection(t *testing.T) {
	m, sender := newTestMachine()
	defer m.Close()

	m.handleMessage(protocol.JoinedRoom{RoomID: "r-7", Success: true})

	m.handleStatus(session.ConnectionState{Status: session.StatusReconnecting, Attempt: 1})
	m.handleStatus(session.ConnectionState{Status: session.StatusReconnecting, Attempt: 2})
	m.handleStatus(session.ConnectionState{Status: session.StatusConnected})

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("Expected exactly one rejoin request, got %d", len(sent))
	}
	rejoin, ok := sent[0].(protocol.RejoinRoom)
	if !ok {
		t.Fatalf("Expected RejoinRoom, got %T", sent[0])
	}
	if rejoin.RoomID != "r-7" {
		t.Errorf("Expected rejoin for r-7, got %q", rejoin.RoomID)
	}
}

func TestNoRejoinOnFreshConnect(t *testing.T) {
	m, sender := newTestMachine()
	defer m.Close()

	m.handleMessage(protocol.JoinedRoom{RoomID: "r-7", Success: true})

	m.handleStatus(session.ConnectionState{Status: session.StatusConnecting})
	m.handleStatus(session.ConnectionState{Status: session.StatusConnected})

	if sent := sender.messages(); len(sent) != 0 {
		t.Errorf("Expected no rejoin on fresh connect, got %v", sent)
	}
}

func TestNoRejoinWithoutKnownRoom(t *testing.T) {
	m, sender := newTestMachine()
	defer m.Close()

	m.handleStatus(session.ConnectionState{Status: session.StatusReconnecting, Attempt: 1})
	m.handleStatus(session.ConnectionState{Status: session.StatusConnected})

	if sent := sender.messages(); len(sent) != 0 {
		t.Errorf("Expected no rejoin without a known room, got %v", sent)
	}
}

func TestRunPreservesArrivalOrder(t *testing.T) {
	const n = 200

	m, _ := newTestMachine()
	defer m.Close()

	msgs := make(chan protocol.ServerMessage)
	effects, cancel := m.Effects()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go m.Run(ctx, msgs, nil)

	received := make(chan []Effect, 1)
	go func() {
		var got []Effect
		for e := range effects {
			got = append(got, e)
			if len(got) == n {
				break
			}
		}
		received <- got
	}()

	// Burst faster than the consumer side drains; arrival order must be
	// preserved end to end with no interleaving.
	for i := 0; i < n; i++ {
		msgs <- protocol.TimeUpdate{RemainingMs: int64(i)}
	}

	select {
	case got := <-received:
		for i, e := range got {
			tick, ok := e.Msg.(protocol.TimeUpdate)
			if !ok {
				t.Fatalf("Expected TimeUpdate at position %d, got %T", i, e.Msg)
			}
			if tick.RemainingMs != int64(i) {
				t.Fatalf("Expected effect %d at position %d, got %d", i, i, tick.RemainingMs)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for ordered effects")
	}
}

func TestRunDropsRateLimitedMessages(t *testing.T) {
	sender := &recordingSender{}
	m := New(ratelimit.New(2, time.Minute), sender, zerolog.Nop())
	defer m.Close()

	msgs := make(chan protocol.ServerMessage)
	effects, cancel := m.Effects()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go m.Run(ctx, msgs, nil)

	for i := 0; i < 5; i++ {
		msgs <- protocol.TimeUpdate{RemainingMs: int64(i)}
	}
	close(msgs)

	var got []Effect
	deadline := time.After(500 * time.Millisecond)
loop:
	for {
		select {
		case e := <-effects:
			got = append(got, e)
		case <-deadline:
			break loop
		}
	}

	if len(got) != 2 {
		t.Errorf("Expected exactly 2 admitted messages, got %d", len(got))
	}
}
