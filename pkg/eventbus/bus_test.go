package eventbus

import (
	"testing"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	bus := New(10)
	sub := bus.Subscribe(Filter{TaskID: "task-1"})

	bus.Publish(models.Event{Type: models.EventTaskStart, TaskID: "task-1"})
	bus.Publish(models.Event{Type: models.EventTaskStart, TaskID: "task-2"})

	select {
	case evt := <-sub.Events:
		assert.Equal(t, "task-1", evt.TaskID)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	select {
	case evt := <-sub.Events:
		t.Fatalf("unexpected second event: %+v", evt)
	default:
	}
}

func TestWildcardSubscriptionReceivesEveryEvent(t *testing.T) {
	bus := New(10)
	sub := bus.Subscribe(Filter{})

	bus.Publish(models.Event{Type: models.EventTaskStart, TaskID: "a"})
	bus.Publish(models.Event{Type: models.EventTaskComplete, TaskID: "b"})

	first := <-sub.Events
	second := <-sub.Events
	assert.Equal(t, models.EventTaskStart, first.Type)
	assert.Equal(t, models.EventTaskComplete, second.Type)
}

func TestEventIDsAreMonotonic(t *testing.T) {
	bus := New(10)
	e1 := bus.Publish(models.Event{Type: models.EventLog})
	e2 := bus.Publish(models.Event{Type: models.EventLog})
	assert.NotEqual(t, e1.ID, e2.ID)
	assert.False(t, e2.Timestamp.Before(e1.Timestamp))
}

func TestRingEvictsOldestBlock(t *testing.T) {
	bus := New(3)
	for i := 0; i < 5; i++ {
		bus.Publish(models.Event{Type: models.EventLog})
	}
	hist := bus.History()
	require.Len(t, hist, 3)
}

func TestSinceReplayAndLostEventsSignal(t *testing.T) {
	bus := New(2)
	cutoff := time.Now().UTC()
	bus.Publish(models.Event{Type: models.EventLog})
	bus.Publish(models.Event{Type: models.EventLog})
	bus.Publish(models.Event{Type: models.EventLog}) // evicts the first

	events, lost := bus.Since(cutoff)
	assert.Len(t, events, 2)
	assert.True(t, lost, "cursor predates the oldest retained event")
}

func TestFailingSubscriberIsRemovedOthersStillDelivered(t *testing.T) {
	bus := New(10)
	slow := bus.Subscribe(Filter{})
	healthy := bus.Subscribe(Filter{})

	// Fill the slow subscriber's buffer without draining it.
	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(models.Event{Type: models.EventLog})
	}

	assert.Equal(t, 1, bus.SubscriberCount(), "slow subscriber should have been dropped")

	select {
	case _, ok := <-slow.Events:
		assert.True(t, ok || !ok) // channel is closed or drained; either is fine post-drop
	default:
	}

	// healthy subscriber's channel should not be closed and had events delivered.
	delivered := 0
	for {
		select {
		case _, ok := <-healthy.Events:
			if !ok {
				t.Fatal("healthy subscriber should not have been dropped")
			}
			delivered++
		default:
			assert.Greater(t, delivered, 0)
			return
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(10)
	sub := bus.Subscribe(Filter{})
	bus.Unsubscribe(sub.ID)

	_, ok := <-sub.Events
	assert.False(t, ok)
}
