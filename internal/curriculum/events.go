package curriculum

import (
	"log/slog"
	"sync"
	"time"
)

// Event types published by the service.
const (
	EventCurriculumUpdated = "curriculum.updated"
	EventDayStarted        = "day.started"
	EventDayCancelled      = "day.cancelled"
)

// Event describes a curriculum change observers may react to.
type Event struct {
	Type    string
	ClassID string
	Day     int
	At      time.Time
}

// Publisher fans curriculum events out to registered observers. Observers
// are called synchronously in subscription order. A nil Publisher discards
// all events.
type Publisher struct {
	mu   sync.RWMutex
	subs []func(Event)
}

// NewPublisher creates an empty event publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers an observer for all events.
func (p *Publisher) Subscribe(fn func(Event)) {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
}

// Publish delivers an event to every observer.
func (p *Publisher) Publish(e Event) {
	if p == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	p.mu.RLock()
	subs := p.subs
	p.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}

	slog.Debug("curriculum event published",
		"type", e.Type,
		"class_id", e.ClassID,
		"day", e.Day,
	)
}
