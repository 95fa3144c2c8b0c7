// Package websocket provides the duplex WebSocket transport used by the
// connection session.
//
// The websocket package implements:
//   - Dialing the game endpoint with an optional playerId query parameter
//   - Text-frame reads and deadline-guarded writes
//   - Ping/pong keepalive plumbing
//   - Normal-closure handshake for intentional disconnects
//
// Endpoint:
//
// Connections are opened against the configured base URL plus the fixed
// "/game" path segment. When a player id is supplied it is carried as the
// "playerId" query parameter so the server can correlate a rejoin with the
// previous identity:
//
//	ws://host:port/game?playerId=6f1c...
//
// http and https base URLs are accepted and rewritten to ws and wss.
//
// Closure Codes:
//
// CloseNormal performs a clean shutdown with close code 1000 (normal
// closure). The session treats any other closure code, and any read failure,
// as abnormal and enters its reconnection loop. IsNormalClosure classifies
// read errors accordingly.
//
// Usage:
//
//	dialer := websocket.NewDialer("wss://play.example.com")
//	conn, err := dialer.Dial(ctx, playerID)
//	if err != nil {
//		// transport failure, subject to reconnection policy
//	}
//	defer conn.Close()
//
// Concurrency:
//
// A Conn supports one concurrent reader. Writes and pings may come from
// different goroutines; they are serialized internally.
package websocket
