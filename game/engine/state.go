package engine

import "github.com/astroturfstudio/quizzi-go/protocol"

// Phase is a room lifecycle phase as seen by the client.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseCountdown
	PhasePlaying
	PhasePaused
	PhaseClosed
)

// String returns the string representation of a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// RoomState is the authoritative reducer state. Exactly one value is live at
// a time; write access belongs to the Machine, everyone else reads snapshots
// from the state stream.
type RoomState struct {
	Phase   Phase
	Players []protocol.Player
}

// transitions is the closed table of valid (current phase, incoming tag)
// pairs. Any pair not present is an invalid transition.
var transitions = map[Phase]map[protocol.RoomStateTag]Phase{
	PhaseIdle:      {protocol.TagWaiting: PhaseWaiting},
	PhaseWaiting:   {protocol.TagCountdown: PhaseCountdown},
	PhaseCountdown: {protocol.TagPlaying: PhasePlaying},
	PhasePlaying:   {protocol.TagClosed: PhaseClosed},
	PhasePaused:    {protocol.TagClosed: PhaseClosed},
}

// phaseTags maps each phase to the RoomUpdate tag that names it. PhaseIdle
// has no wire name: the server never announces it.
var phaseTags = map[Phase]protocol.RoomStateTag{
	PhaseWaiting:   protocol.TagWaiting,
	PhaseCountdown: protocol.TagCountdown,
	PhasePlaying:   protocol.TagPlaying,
	PhasePaused:    protocol.TagPaused,
	PhaseClosed:    protocol.TagClosed,
}

// phaseCarriesPlayers marks the phases whose state carries a roster.
var phaseCarriesPlayers = map[Phase]bool{
	PhaseWaiting: true,
	PhasePlaying: true,
	PhaseClosed:  true,
}

func clonePlayers(players []protocol.Player) []protocol.Player {
	if players == nil {
		return nil
	}
	out := make([]protocol.Player, len(players))
	copy(out, players)
	return out
}
