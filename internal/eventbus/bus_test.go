package eventbus

import (
	"testing"
	"time"
)

func TestPublishFanout(t *testing.T) {
	t.Parallel()
	b := New()
	all, unsubAll := b.Subscribe(4)
	defer unsubAll()
	done, unsubDone := b.SubscribeTypes(4, "task.completed")
	defer unsubDone()

	b.Publish(Event{Type: "task.spawned", Data: 1})
	b.Publish(Event{Type: "task.completed", Data: 1})

	if got := (<-all).Type; got != "task.spawned" {
		t.Fatalf("first event = %q, want task.spawned", got)
	}
	if got := (<-all).Type; got != "task.completed" {
		t.Fatalf("second event = %q, want task.completed", got)
	}
	e := <-done
	if e.Type != "task.completed" {
		t.Fatalf("filtered event = %q, want task.completed", e.Type)
	}
	if e.Time.IsZero() {
		t.Fatal("Publish did not stamp Time")
	}
	select {
	case extra := <-done:
		t.Fatalf("unexpected event on filtered subscription: %+v", extra)
	default:
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	defer unsub()

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{Type: "x"})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	unsub()
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after unsubscribe")
	}
	b.Publish(Event{Type: "after"})
}
