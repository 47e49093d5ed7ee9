package event

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/eigenbench/internal/logging"
)

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	id := bus.Subscribe(TypeChunkClaimed, func(e Event) {
		received = e
	})
	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}

	bus.Publish(NewChunkClaimedEvent(2, 10, 15))

	claimed, ok := received.(ChunkClaimedEvent)
	if !ok {
		t.Fatalf("received %T, want ChunkClaimedEvent", received)
	}
	if claimed.Worker != 2 || claimed.Start != 10 || claimed.End != 15 || claimed.Len() != 5 {
		t.Errorf("unexpected event: %+v", claimed)
	}
	if claimed.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(TypeRunStarted, func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	bus.Publish(NewTaskCompletedEvent(0, 1, 10, time.Millisecond, 1.5))
}

func TestBus_NilBus(t *testing.T) {
	var bus *Bus
	if bus.HasSubscribers(TypeTaskCompleted) {
		t.Error("nil bus has no subscribers")
	}
	bus.Publish(NewChunkClaimedEvent(0, 0, 5))
}

func TestBus_HasSubscribers(t *testing.T) {
	bus := NewBus(nil)
	if bus.HasSubscribers(TypeChunkClaimed) {
		t.Error("empty bus should have no subscribers")
	}

	id := bus.Subscribe(TypeChunkClaimed, func(Event) {})
	if !bus.HasSubscribers(TypeChunkClaimed) {
		t.Error("expected subscriber for chunk.claimed")
	}
	if bus.HasSubscribers(TypeTaskCompleted) {
		t.Error("task.completed has no subscriber yet")
	}
	bus.Unsubscribe(id)

	bus.SubscribeAll(func(Event) {})
	if !bus.HasSubscribers(TypeTaskCompleted) {
		t.Error("wildcard subscriber should count for every type")
	}
}

func TestBus_OrderSpecificThenWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "wildcard") })
	bus.Subscribe(TypeRunCompleted, func(e Event) { order = append(order, "first") })
	bus.Subscribe(TypeRunCompleted, func(e Event) { order = append(order, "second") })

	bus.Publish(NewRunCompletedEvent("run", time.Second, 20, nil))

	want := []string{"first", "second", "wildcard"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := make(map[string]int)
	id1 := bus.Subscribe(TypeTaskFailed, func(e Event) { calls["one"]++ })
	bus.Subscribe(TypeTaskFailed, func(e Event) { calls["two"]++ })

	if !bus.Unsubscribe(id1) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.Unsubscribe(id1) {
		t.Error("second Unsubscribe should return false")
	}

	bus.Publish(NewTaskFailedEvent(0, 3, errors.New("boom")))

	if calls["one"] != 0 || calls["two"] != 1 {
		t.Errorf("calls = %v", calls)
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)

	var id string
	calls := 0
	id = bus.Subscribe(TypeChunkClaimed, func(e Event) {
		calls++
		bus.Unsubscribe(id)
	})
	bus.Subscribe(TypeChunkClaimed, func(e Event) { calls++ })

	bus.Publish(NewChunkClaimedEvent(0, 0, 5))
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	bus.Publish(NewChunkClaimedEvent(0, 5, 10))
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(TypeRunStarted, func(e Event) {})
	bus.Subscribe(TypeRunCompleted, func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Errorf("Expected 3 subscriptions before clear, got %d", bus.SubscriptionCount())
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after clear, got %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWithWriter(&buf, logging.LevelError))

	calls := 0
	bus.Subscribe(TypeTaskCompleted, func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeTaskCompleted, func(e Event) {
		calls++
	})

	bus.Publish(NewTaskCompletedEvent(1, 2, 10, time.Microsecond, 0.5))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic should be logged, got %q", buf.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeTaskCompleted, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Go(func() {
			for i := range 25 {
				bus.Publish(NewTaskCompletedEvent(w, i, 10, 0, 0))
			}
		})
	}
	wg.Wait()

	if calls != 200 {
		t.Errorf("Expected 200 calls, got %d", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := bus.Subscribe(TypeChunkClaimed, func(e Event) {})
			bus.Publish(NewChunkClaimedEvent(0, 0, 1))
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after concurrent add/remove, got %d", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)

	ids := make(map[string]bool)
	for range 1000 {
		id := bus.Subscribe(TypeRunStarted, func(e Event) {})
		if ids[id] {
			t.Errorf("Duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}

func TestRunCompletedEvent_Success(t *testing.T) {
	if !NewRunCompletedEvent("r", 0, 0, nil).Success() {
		t.Error("nil error should be success")
	}
	if NewRunCompletedEvent("r", 0, 0, errors.New("x")).Success() {
		t.Error("non-nil error should not be success")
	}
	started := NewRunStartedEvent("r", 20, 8, "even", 4, 5, "dynamic", "gonum")
	if started.EventType() != TypeRunStarted || started.Tasks != 20 || started.Workers != 4 {
		t.Errorf("unexpected RunStartedEvent: %+v", started)
	}
}
