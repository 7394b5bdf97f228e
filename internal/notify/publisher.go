package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers registry notifications. Emit is called synchronously
// after the mutating operation has committed.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Nop discards events. Used when no observer is configured.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }

// MemorySink retains events in order. It backs tests and the in-process
// deployment's event inspection.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) error {
	stamp(&event)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}

// Fanout emits to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Emit(ctx context.Context, event Event) error {
	stamp(&event)
	var errs []error
	for _, p := range f {
		if err := p.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// stamp assigns an event ID and timestamp if the producer left them unset.
func stamp(event *Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
}
