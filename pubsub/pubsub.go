package pubsub

import "sync"

// defaultBuffer is the per-subscriber channel capacity used when a
// non-positive buffer size is requested.
const defaultBuffer = 16

// Feed is a multicast stream with replay-latest semantics: every new
// subscriber immediately receives the most recently published value, if any,
// followed by all subsequent values in publish order.
type Feed[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	buffer int
	latest T
	seeded bool
	closed bool
}

// NewFeed creates a feed whose subscribers each get a channel with the given
// buffer capacity.
func NewFeed[T any](buffer int) *Feed[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Feed[T]{
		subs:   make(map[chan T]struct{}),
		buffer: buffer,
	}
}

// Publish records v as the latest value and delivers it to all subscribers.
// A subscriber whose buffer is full is evicted and its channel closed.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.latest = v
	f.seeded = true

	for ch := range f.subs {
		select {
		case ch <- v:
		default:
			delete(f.subs, ch)
			close(ch)
		}
	}
}

// Latest returns the most recently published value and whether one exists.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.seeded
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes the channel; calling it more than once is safe.
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan T, f.buffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	if f.seeded {
		ch <- f.latest
	}
	f.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.subs[ch]; ok {
				delete(f.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close tears down the feed and closes all subscriber channels. Subsequent
// publishes are no-ops and subsequent subscriptions receive a closed channel.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true

	for ch := range f.subs {
		delete(f.subs, ch)
		close(ch)
	}
}

// Bus is a multicast stream without replay: values published before a
// subscription are never observed by it.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	buffer int
	closed bool
}

// NewBus creates a bus whose subscribers each get a channel with the given
// buffer capacity.
func NewBus[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus[T]{
		subs:   make(map[chan T]struct{}),
		buffer: buffer,
	}
}

// Publish delivers v to all current subscribers. A subscriber whose buffer is
// full is evicted and its channel closed.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for ch := range b.subs {
		select {
		case ch <- v:
		default:
			delete(b.subs, ch)
			close(ch)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes the channel; calling it more than once is safe.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close tears down the bus and closes all subscriber channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
