package pubsub

import "testing"

func TestFeedReplaysLatestToNewSubscriber(t *testing.T) {
	feed := NewFeed[int](4)
	feed.Publish(1)
	feed.Publish(2)

	ch, cancel := feed.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		if v != 2 {
			t.Errorf("Expected latest value 2, got %d", v)
		}
	default:
		t.Fatal("Expected replayed value to be immediately available")
	}
}

func TestFeedDeliversInPublishOrder(t *testing.T) {
	feed := NewFeed[int](8)
	ch, cancel := feed.Subscribe()
	defer cancel()

	for i := 1; i <= 5; i++ {
		feed.Publish(i)
	}

	for i := 1; i <= 5; i++ {
		if v := <-ch; v != i {
			t.Fatalf("Expected value %d in order, got %d", i, v)
		}
	}
}

func TestFeedLatest(t *testing.T) {
	feed := NewFeed[string](4)

	if _, ok := feed.Latest(); ok {
		t.Error("Expected no latest value before first publish")
	}

	feed.Publish("a")
	v, ok := feed.Latest()
	if !ok {
		t.Fatal("Expected latest value after publish")
	}
	if v != "a" {
		t.Errorf("Expected latest value %q, got %q", "a", v)
	}
}

func TestFeedEvictsSlowSubscriber(t *testing.T) {
	feed := NewFeed[int](1)
	ch, cancel := feed.Subscribe()
	defer cancel()

	feed.Publish(1)
	feed.Publish(2) // overflows the buffer, subscriber is evicted

	if v, open := <-ch; !open || v != 1 {
		t.Fatalf("Expected buffered value 1, got %d (open=%v)", v, open)
	}
	if _, open := <-ch; open {
		t.Error("Expected channel to be closed after eviction")
	}
}

func TestFeedCancelIsIdempotent(t *testing.T) {
	feed := NewFeed[int](4)
	_, cancel := feed.Subscribe()

	cancel()
	cancel() // must not panic

	feed.Publish(1)
}

func TestBusDoesNotReplay(t *testing.T) {
	bus := NewBus[int](4)
	bus.Publish(1)

	ch, cancel := bus.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		t.Errorf("Expected no replayed value, got %d", v)
	default:
	}

	bus.Publish(2)
	if v := <-ch; v != 2 {
		t.Errorf("Expected value 2, got %d", v)
	}
}

func TestBusMulticastsToAllSubscribers(t *testing.T) {
	bus := NewBus[int](4)
	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	bus.Publish(7)

	if v := <-a; v != 7 {
		t.Errorf("Expected subscriber A to receive 7, got %d", v)
	}
	if v := <-b; v != 7 {
		t.Errorf("Expected subscriber B to receive 7, got %d", v)
	}
}

func TestClosedFeedStopsDelivering(t *testing.T) {
	feed := NewFeed[int](4)
	ch, cancel := feed.Subscribe()
	defer cancel()

	feed.Close()
	feed.Publish(1)

	if _, open := <-ch; open {
		t.Error("Expected subscriber channel to be closed after Close")
	}

	late, lateCancel := feed.Subscribe()
	defer lateCancel()
	if _, open := <-late; open {
		t.Error("Expected late subscription on closed feed to be closed")
	}
}
