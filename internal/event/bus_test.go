package event

import (
	"sync"
	"testing"
)

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe("race.won", func(e Event) {
		got = append(got, e)
	})

	bus.Publish(WinEvent{Cycle: 1, Worker: 2, Address: "95.163.248.5"})
	bus.Publish(CycleEndedEvent{Cycle: 1, Succeeded: true})

	if len(got) != 1 {
		t.Fatalf("handler called %d times, want 1", len(got))
	}
	win, ok := got[0].(WinEvent)
	if !ok {
		t.Fatalf("event type = %T, want WinEvent", got[0])
	}
	if win.Address != "95.163.248.5" {
		t.Errorf("Address = %q, want %q", win.Address, "95.163.248.5")
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var count int
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(CycleStartedEvent{Cycle: 1, Workers: 4})
	bus.Publish(WindowExpiredEvent{Cycle: 1})
	bus.Publish(StoppedEvent{Reason: "exhausted", Cycles: 1})

	if count != 3 {
		t.Errorf("wildcard handler called %d times, want 3", count)
	}
}

func TestSpecificHandlersRunBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })
	bus.Subscribe("race.won", func(Event) { order = append(order, "specific") })

	bus.Publish(WinEvent{})

	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("dispatch order = %v, want [specific wildcard]", order)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	var count int
	id := bus.Subscribe("cycle.started", func(Event) { count++ })

	bus.Publish(CycleStartedEvent{Cycle: 1})
	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe() = false for live subscription")
	}
	bus.Publish(CycleStartedEvent{Cycle: 2})

	if count != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", count)
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe() = true for removed subscription")
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	var reached bool
	bus.Subscribe("race.won", func(Event) { panic("boom") })
	bus.Subscribe("race.won", func(Event) { reached = true })

	bus.Publish(WinEvent{})

	if !reached {
		t.Error("handler after a panicking handler was not invoked")
	}
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("cycle.ended", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(CycleEndedEvent{})
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Errorf("handler called %d times, want 20", count)
	}
}
