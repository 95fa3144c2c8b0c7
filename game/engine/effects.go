package engine

import "github.com/astroturfstudio/quizzi-go/protocol"

// EffectKind names the one-shot notification carried by an Effect.
type EffectKind int

const (
	EffectRoomCreated EffectKind = iota
	EffectRoomJoined
	EffectCountdownTick
	EffectTimeTick
	EffectTimeUp
	EffectAnswerResult
	EffectRoundStarted
	EffectRoundEnded
	EffectGameOver
	EffectPlayerDisconnected
	EffectPlayerReconnected
	EffectRoomClosed
	EffectError
)

// String returns the string representation of an EffectKind.
func (k EffectKind) String() string {
	switch k {
	case EffectRoomCreated:
		return "room_created"
	case EffectRoomJoined:
		return "room_joined"
	case EffectCountdownTick:
		return "countdown_tick"
	case EffectTimeTick:
		return "time_tick"
	case EffectTimeUp:
		return "time_up"
	case EffectAnswerResult:
		return "answer_result"
	case EffectRoundStarted:
		return "round_started"
	case EffectRoundEnded:
		return "round_ended"
	case EffectGameOver:
		return "game_over"
	case EffectPlayerDisconnected:
		return "player_disconnected"
	case EffectPlayerReconnected:
		return "player_reconnected"
	case EffectRoomClosed:
		return "room_closed"
	case EffectError:
		return "error"
	default:
		return "unknown"
	}
}

// Effect is a one-shot notification emitted by the state machine. Msg is the
// server message that produced it, so consumers can read the payload without
// a second catalog.
type Effect struct {
	Kind EffectKind
	Msg  protocol.ServerMessage
}

// effectKindFor maps an effect-only server message to its kind. RoomUpdate
// never maps to an effect; it reports false.
func effectKindFor(msg protocol.ServerMessage) (EffectKind, bool) {
	switch msg.(type) {
	case protocol.RoomCreated:
		return EffectRoomCreated, true
	case protocol.JoinedRoom:
		return EffectRoomJoined, true
	case protocol.CountdownTimeUpdate:
		return EffectCountdownTick, true
	case protocol.TimeUpdate:
		return EffectTimeTick, true
	case protocol.TimeUp:
		return EffectTimeUp, true
	case protocol.AnswerResult:
		return EffectAnswerResult, true
	case protocol.RoundStarted:
		return EffectRoundStarted, true
	case protocol.RoundEnded:
		return EffectRoundEnded, true
	case protocol.GameOver:
		return EffectGameOver, true
	case protocol.PlayerDisconnected:
		return EffectPlayerDisconnected, true
	case protocol.PlayerReconnected:
		return EffectPlayerReconnected, true
	case protocol.RoomClosed:
		return EffectRoomClosed, true
	case protocol.Error:
		return EffectError, true
	default:
		return 0, false
	}
}
