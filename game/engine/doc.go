// Package engine implements the room state machine: the sole authority over
// the client's room/game state.
//
// The engine package implements:
//   - The RoomState variants and the room lifecycle transition table
//   - Sequential reduction of the inbound server message stream
//   - 1:1 translation of non-state messages into one-shot effects
//   - Automatic rejoin after a successful reconnection
//
// Dispatch Rule:
//
// Only RoomUpdate messages can change RoomState; they are reduced through
// the transition table. Every other server message is translated into an
// Effect and published on the effect bus without touching state. An invalid
// transition is logged and absorbed: the current state is retained and no
// effect is emitted.
//
// Transition Table:
//
//	Idle      + WAITING   -> Waiting(players)
//	Waiting   + COUNTDOWN -> Countdown
//	Countdown + PLAYING   -> Playing(players)
//	Playing   + CLOSED    -> Closed(players)
//	Paused    + CLOSED    -> Closed(players)
//
// A RoomUpdate whose tag matches the current phase refreshes the roster in
// place without being treated as a transition.
//
// Streams:
//
// States() is replay-latest: a new subscriber immediately sees the current
// state. Effects() is fire-once: effects are never replayed, so late
// subscribers miss earlier notifications by design of the channel, and each
// effect is observed at most once per subscriber.
//
// Concurrency:
//
// Run processes its inputs sequentially: one inbound item is fully reduced,
// and its effect emitted, before the next is taken. Reduction happens under
// a single mutex; effect emission happens after the state commit, so an
// observer reacting to an effect can safely read the already-updated state.
package engine
