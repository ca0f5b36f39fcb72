package observe

import (
	"testing"
	"time"
)

// TestPublishSubscribe verifies a subscriber receives a published value.
func TestPublishSubscribe(t *testing.T) {
	hub := NewHub[int]()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(42)
	select {
	case got := <-ch:
		if got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no value received")
	}
}

// TestSubscribeSeedsLast verifies a late subscriber is seeded with the most
// recently published value.
func TestSubscribeSeedsLast(t *testing.T) {
	hub := NewHub[string]()
	defer hub.Close()

	hub.Publish("old")
	hub.Publish("current")

	ch, cancel := hub.Subscribe()
	defer cancel()

	select {
	case got := <-ch:
		if got != "current" {
			t.Errorf("got %q, want %q", got, "current")
		}
	case <-time.After(time.Second):
		t.Fatal("late subscriber received nothing")
	}
}

// TestPublishReplacesStale verifies a slow subscriber sees the freshest value,
// not the first unconsumed one.
func TestPublishReplacesStale(t *testing.T) {
	hub := NewHub[int]()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(1)
	hub.Publish(2)
	hub.Publish(3)

	select {
	case got := <-ch:
		if got != 3 {
			t.Errorf("got %d, want 3", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no value received")
	}
}

// TestCancelClosesChannel verifies that unsubscribing closes the channel and
// stops delivery.
func TestCancelClosesChannel(t *testing.T) {
	hub := NewHub[int]()
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	cancel()
	hub.Publish(1)

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received a value after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled channel not closed")
	}
}

// TestCloseIdempotent verifies Close can be called twice and that publishes
// after Close are dropped.
func TestCloseIdempotent(t *testing.T) {
	hub := NewHub[int]()
	ch, _ := hub.Subscribe()

	hub.Close()
	hub.Close()
	hub.Publish(1)

	if _, ok := <-ch; ok {
		t.Fatal("received a value after Close")
	}
}
