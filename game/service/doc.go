// Package service provides the high-level quiz client facade.
//
// The service package wires the transport dialer, connection session, rate
// limiter, and room state machine into a single Client with the operations
// the screens call:
//
//	client, err := service.NewClient(cfg, logger)
//	client.Start(ctx)
//	client.CreateRoom("Trivia Night", "science", "classic")
//	client.PlayerReady()
//	client.SubmitAnswer(2)
//	client.Close()
//
// Consumers observe the room state stream, the effect stream, and the
// connection status stream; the facade performs no rendering of its own.
//
// Player Identity:
//
// A stable player id is required for rejoin correlation across reconnects.
// The identity store persists a generated UUID to a small JSON file on first
// use and returns the same id afterwards. Screens never see the id directly;
// it travels in the connect query parameter and rejoin messages.
package service
