package eventbus

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBus_PublishAndSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe("chat.exchanged")

	bus.Publish("chat.exchanged", "hello")

	select {
	case evt := <-ch:
		if evt.Topic != "chat.exchanged" || evt.Payload != "hello" {
			t.Errorf("evt = %+v; want chat.exchanged/hello", evt)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout: expected event within 100ms")
	}
}

func TestEventBus_MultipleSubscribers_DifferentTopics(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe("a")
	ch2 := bus.Subscribe("a")
	chB := bus.Subscribe("b")

	bus.Publish("a", 42)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Payload != 42 {
				t.Errorf("subscriber %d: payload %v; want 42", i, evt.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout", i)
		}
	}
	select {
	case evt := <-chB:
		t.Errorf("topic b received %+v; want nothing", evt)
	default:
	}
}

func TestEventBus_FullBuffer_DropsWithoutBlocking(t *testing.T) {
	bus := New()
	_ = bus.Subscribe("full")

	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBufferSize+5; i++ {
			bus.Publish("full", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	if got := bus.Dropped(); got != 5 {
		t.Errorf("Dropped() = %d; want 5", got)
	}
}

func TestEventBus_Close_EndsConsumerLoops(t *testing.T) {
	bus := New()
	ch := bus.Subscribe("chat.exchanged")

	var wg sync.WaitGroup
	received := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range ch {
			received++
		}
	}()

	bus.Publish("chat.exchanged", 1)
	bus.Close()
	bus.Close()
	wg.Wait()

	if received != 1 {
		t.Errorf("received = %d; want 1", received)
	}

	bus.Publish("chat.exchanged", 2)
	if _, ok := <-bus.Subscribe("chat.exchanged"); ok {
		t.Error("Subscribe after Close returned an open channel")
	}
}
