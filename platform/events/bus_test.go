package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dialer_portal_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	calls := 0
	handler := HandlerFunc(func(ctx context.Context, event Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		wg.Done()
		return nil
	})
	bus.Subscribe(pingEvent{}.EventName(), handler)
	bus.Subscribe(pingEvent{}.EventName(), handler)

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	failed := errors.New("handler failed")
	bus.Subscribe(pingEvent{}.EventName(), HandlerFunc(func(ctx context.Context, event Event) error {
		return failed
	}))
	bus.Subscribe(pingEvent{}.EventName(), HandlerFunc(func(ctx context.Context, event Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, failed) {
		t.Errorf("PublishSync error = %v, want wrapped handler error", err)
	}
}

func TestPublishIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Errorf("PublishSync with no subscribers = %v, want nil", err)
	}
}

func TestBaseEventTimestamp(t *testing.T) {
	before := time.Now()
	event := pingEvent{BaseEvent: NewBaseEvent()}
	after := time.Now()

	occurred := event.OccurredAt()
	if occurred.Before(before) || occurred.After(after) {
		t.Errorf("OccurredAt = %v, want between %v and %v", occurred, before, after)
	}
}
