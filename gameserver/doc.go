// Package gameserver implements a self-contained quiz game server speaking
// the same wire protocol as the client packages.
//
// It exists for local play and integration testing: a room registry behind a
// websocket endpoint, with each room running its own loop that drives the
// lobby, countdown, timed rounds, scoring, and game-over flow. It is not
// designed for production deployment; there is no persistence and no
// horizontal scaling story.
//
// Architecture:
//   - Server owns the HTTP router, the websocket upgrader, and the room
//     registry. Each websocket connection gets a read pump and a write pump.
//   - Room is an actor: all mutations happen inside its run loop, fed by a
//     command channel and its phase timers. Connection pumps never touch room
//     state directly.
package gameserver
