// Package eventbus implements the Event Bus: an in-process typed pub-sub
// with synchronous best-effort fan-out, a bounded ring history, and
// since-cursor replay for late subscribers.
//
// This is a deliberate simplification of the teacher's
// Postgres-LISTEN/NOTIFY-backed ConnectionManager (pkg/events/manager.go):
// this orchestrator is single-process (spec §1 Non-goals rule out
// distributed scheduling across nodes), so there is no cross-process
// broadcast to do — but the snapshot-under-lock-then-send-outside-lock
// discipline, and the "a failing subscriber is removed, others still get
// delivered" semantics, are kept.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/google/uuid"
)

// DefaultMaxHistory is the default ring buffer size (spec §3: default 1000).
const DefaultMaxHistory = 1000

// subscriberBuffer bounds how far a slow subscriber may lag before being
// dropped. Matches the ConnectionManager's "a failing subscriber is
// removed, others still receive the event" rule.
const subscriberBuffer = 64

// Subscription is a live registration on the bus. Events matching the
// filter arrive on Events; the subscriber must drain it or risk being
// dropped once subscriberBuffer fills.
type Subscription struct {
	ID     string
	Events <-chan models.Event
}

type subscriber struct {
	id         string
	taskID     string // "" matches any task
	eventTypes map[models.EventType]bool // nil/empty matches any type
	sink       chan models.Event
}

func (s *subscriber) matches(evt models.Event) bool {
	if s.taskID != "" && evt.TaskID != s.taskID {
		return false
	}
	if len(s.eventTypes) > 0 && !s.eventTypes[evt.Type] {
		return false
	}
	return true
}

// Bus is the Event Bus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber

	histMu     sync.RWMutex
	history    []models.Event
	maxHistory int

	counter atomic.Uint64
	log     *slog.Logger
}

// New constructs a Bus with the given ring history size. A size of 0
// selects DefaultMaxHistory.
func New(maxHistory int) *Bus {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Bus{
		subscribers: make(map[string]*subscriber),
		maxHistory:  maxHistory,
		log:         slog.With("component", "eventbus"),
	}
}

// Filter narrows a Subscribe call to a task id and/or a set of event types.
// An empty TaskID or empty Types matches everything on that axis.
type Filter struct {
	TaskID string
	Types  []models.EventType
}

// Subscribe registers a new subscriber and returns its channel. Call
// Unsubscribe with the returned ID when done.
func (b *Bus) Subscribe(filter Filter) Subscription {
	typeSet := make(map[models.EventType]bool, len(filter.Types))
	for _, t := range filter.Types {
		typeSet[t] = true
	}
	sub := &subscriber{
		id:         uuid.NewString(),
		taskID:     filter.TaskID,
		eventTypes: typeSet,
		sink:       make(chan models.Event, subscriberBuffer),
	}

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()

	return Subscription{ID: sub.id, Events: sub.sink}
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
	if ok {
		close(sub.sink)
	}
}

// Publish assigns an id and timestamp to evt, appends it to history, and
// fans it out best-effort to matching subscribers.
func (b *Bus) Publish(evt models.Event) models.Event {
	now := time.Now().UTC()
	evt.Timestamp = now
	evt.ID = fmt.Sprintf("evt_%d_%d", b.counter.Add(1), now.UnixMilli())

	b.appendHistory(evt)

	// Snapshot matching subscribers under the lock, deliver outside it —
	// mirrors ConnectionManager.Broadcast's snapshot-then-send discipline.
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.matches(evt) {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.sink <- evt:
		default:
			b.log.Warn("subscriber buffer full, dropping subscriber", "subscriber_id", sub.id)
			b.Unsubscribe(sub.id)
		}
	}
	return evt
}

// appendHistory adds evt to the ring, evicting the oldest block atomically
// once maxHistory is exceeded.
func (b *Bus) appendHistory(evt models.Event) {
	b.histMu.Lock()
	defer b.histMu.Unlock()
	b.history = append(b.history, evt)
	if len(b.history) > b.maxHistory {
		overflow := len(b.history) - b.maxHistory
		b.history = b.history[overflow:]
	}
}

// Since returns all retained events with a timestamp strictly after since,
// in publication order, plus a bool reporting whether any events older than
// the retained window may have been dropped (i.e. the ring has evicted
// since the caller's position).
func (b *Bus) Since(since time.Time) (events []models.Event, lostEvents bool) {
	b.histMu.RLock()
	defer b.histMu.RUnlock()

	if len(b.history) == b.maxHistory && b.history[0].Timestamp.After(since) {
		lostEvents = true
	}

	out := make([]models.Event, 0, len(b.history))
	for _, e := range b.history {
		if e.Timestamp.After(since) {
			out = append(out, e)
		}
	}
	return out, lostEvents
}

// History returns a copy of the full retained ring, oldest first.
func (b *Bus) History() []models.Event {
	b.histMu.RLock()
	defer b.histMu.RUnlock()
	out := make([]models.Event, len(b.history))
	copy(out, b.history)
	return out
}

// SubscriberCount reports the number of live subscribers (used by tests to
// poll instead of sleeping, matching ConnectionManager.subscriberCount).
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Shutdown closes every live subscriber's channel. Safe to call once at
// process teardown.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.subscribers = make(map[string]*subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		close(sub.sink)
	}
}
