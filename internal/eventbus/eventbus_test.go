package eventbus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	b.Publish(42)
	select {
	case v := <-sub:
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := New[int]()
	_ = b.Subscribe()
	for i := 0; i < 100; i++ {
		b.Publish(i) // buffer overflows, publisher must not stall
	}
}

func TestUnsubscribeCloses(t *testing.T) {
	b := New[string]()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
	b.Publish("after") // no panic on publish after unsubscribe
}

func TestCloseIdempotent(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	b.Close()
	b.Close()
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}
	if ch := b.Subscribe(); ch == nil {
		t.Fatal("subscribe after close should return a closed channel")
	}
}
