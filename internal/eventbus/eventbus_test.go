package eventbus

import (
	"testing"
	"time"
)

func TestPublishFanOut(t *testing.T) {
	bus := New()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish("hello")

	for _, sub := range []<-chan Event{a, b} {
		select {
		case ev := <-sub:
			if ev != "hello" {
				t.Fatalf("unexpected event %v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub := bus.Subscribe()
	for i := 0; i < subBuffer+5; i++ {
		bus.Publish(i)
	}

	// The buffer holds the first subBuffer events; the rest were dropped
	// without blocking the publisher.
	count := 0
	for {
		select {
		case <-sub:
			count++
			continue
		default:
		}
		break
	}
	if count != subBuffer {
		t.Fatalf("expected %d buffered events got %d", subBuffer, count)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish("still alive")
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()

	bus.Close()
	bus.Close()

	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
	if late := bus.Subscribe(); late == nil {
		t.Fatal("subscribe after close should return a closed channel")
	} else if _, ok := <-late; ok {
		t.Fatal("late subscription should be closed immediately")
	}
}
