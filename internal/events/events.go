package events

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
)

const (
	TopicAccounts = "account_events"
	TopicProducts = "product_events"
	TopicOrders   = "order_events"
	TopicContact  = "contact_events"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
	Close() error
}

// Emit publishes best-effort: a broker failure is logged and never fails
// the operation that produced the event.
func Emit(ctx context.Context, p Publisher, topic, key, typ string, payload any) {
	if p == nil {
		return
	}
	ev := Event{Type: typ, OccurredAt: time.Now().UTC(), Payload: payload}
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", typ, "key", key, "error", err)
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, Event) error { return nil }
func (NopPublisher) Close() error { return nil }

type Published struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Event.Type
	}
	return out
}
