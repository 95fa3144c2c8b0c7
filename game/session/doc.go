// Package session owns the client's single logical connection to the game
// server.
//
// The session package implements:
//   - Connect/disconnect lifecycle over the WebSocket transport
//   - Fire-and-forget outbound sends of encoded client messages
//   - A multicast, replay-latest inbound message stream
//   - A broadcast connection status stream (the status publisher)
//   - Reconnection with exponential backoff, capped delay, and attempt limit
//
// One Logical Connection:
//
// However many physical connections come and go underneath, callers see one
// session: Connect starts it, Disconnect ends it, Send transmits on whatever
// transport is currently open (and silently drops otherwise — callers that
// need confirmation wait for the server's echo on the message stream).
//
// Reconnection:
//
// An abnormal closure or transport failure starts the reconnection loop:
// publish Reconnecting(attempt), wait the policy delay, redial with the same
// player id, and on success announce the player's return and publish
// Connected. After MaxAttempts consecutive failures the session publishes
// Failed and injects a synthetic PlayerDisconnected onto the message stream
// so downstream consumers can react without transport-level knowledge. An
// explicit Disconnect, or a server close with the normal closure code, never
// triggers reconnection.
//
// Usage:
//
//	s := session.New(websocket.NewDialer(cfg.ServerURL), session.DefaultPolicy(), logger)
//	msgs, cancelMsgs := s.Messages()
//	status, cancelStatus := s.Status()
//	s.Connect(playerID)
//	...
//	s.Disconnect()
//
// Concurrency:
//
// All methods are safe for concurrent use and none of them block the caller.
// The reconnection timer and both pump goroutines are bound to the session
// scope and stop deterministically on Disconnect or Close.
package session
