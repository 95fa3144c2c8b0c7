// Package pubsub provides the broadcast primitives used by the realtime
// client: a replay-latest feed for state streams and a fire-once bus for
// one-shot notifications.
//
// The pubsub package implements:
//   - Feed: multicast with replay of the most recent value to new subscribers
//   - Bus: multicast without replay, for effects consumed at most once
//   - Per-subscriber buffered delivery that never blocks the publisher
//   - Deterministic teardown via unsubscribe functions and Close
//
// Delivery Semantics:
//
// Both primitives deliver values in publish order to every subscriber. A
// subscriber that falls behind its buffer is closed and removed rather than
// allowed to stall the publisher, mirroring how slow WebSocket clients are
// evicted from a broadcast hub.
//
// Feed vs Bus:
//
// Feed is for state: a new subscriber immediately receives the latest
// published value, so late observers converge on the current state. Bus is
// for effects: past items are never replayed, so a notification is observed
// by at most the subscribers registered when it was published.
//
// Usage:
//
//	feed := pubsub.NewFeed[int](8)
//	ch, cancel := feed.Subscribe()
//	defer cancel()
//
//	feed.Publish(42)
//	v := <-ch // 42
//
// Concurrency:
//
// All methods are safe for concurrent use. Publish holds the registry lock
// only long enough to enqueue into subscriber channels.
package pubsub
