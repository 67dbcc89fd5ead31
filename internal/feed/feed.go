// Package feed is the change feed that keeps every observer of a rental
// record in sync. The lifecycle service publishes one event per committed
// transition; subscribers treat each event as a cache invalidation and
// re-read the authoritative record, never applying the delta themselves.
package feed

import (
	"sync"
	"time"

	"rentloop-backend/internal/domain"
)

// Event describes one committed status transition.
type Event struct {
	RentalID  int64               `json:"rental_id"`
	OldStatus domain.RentalStatus `json:"old_status"`
	NewStatus domain.RentalStatus `json:"new_status"`
	At        time.Time           `json:"at"`
}

// Publisher is the write side of the feed.
type Publisher interface {
	Publish(evt Event)
}

// Feed fans transition events out to per-record subscriptions.
type Feed struct {
	mu   sync.Mutex
	subs map[int64]map[*Subscription]struct{}
}

// Subscription delivers events for a single rental. Close tears it down.
type Subscription struct {
	feed     *Feed
	rentalID int64
	events   chan Event

	mu      sync.Mutex
	pending *Event // coalesced event for a full buffer
	closed  bool
}

func New() *Feed {
	return &Feed{
		subs: make(map[int64]map[*Subscription]struct{}),
	}
}

const subscriptionBuffer = 8

// Subscribe registers an observer for one rental record.
func (f *Feed) Subscribe(rentalID int64) *Subscription {
	sub := &Subscription{
		feed:     f,
		rentalID: rentalID,
		events:   make(chan Event, subscriptionBuffer),
	}

	f.mu.Lock()
	set, ok := f.subs[rentalID]
	if !ok {
		set = make(map[*Subscription]struct{})
		f.subs[rentalID] = set
	}
	set[sub] = struct{}{}
	f.mu.Unlock()

	return sub
}

// Publish delivers the event to every subscription on the record. A
// subscriber that is not draining its channel gets the newest event
// coalesced instead of blocking the publisher; one invalidation is enough
// since observers re-fetch rather than replay.
func (f *Feed) Publish(evt Event) {
	f.mu.Lock()
	set := f.subs[evt.RentalID]
	subs := make([]*Subscription, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(evt)
	}
}

// SubscriberCount reports how many subscriptions are active for a record.
func (f *Feed) SubscriberCount(rentalID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[rentalID])
}

func (s *Subscription) deliver(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// Flush a previously coalesced event first so ordering holds.
	if s.pending != nil {
		select {
		case s.events <- *s.pending:
			s.pending = nil
		default:
		}
	}

	if s.pending == nil {
		select {
		case s.events <- evt:
			return
		default:
		}
	}
	s.pending = &evt
}

// Events is the subscriber's receive channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Next returns the coalesced event when the buffer overflowed, clearing it.
// Callers poll it after draining Events.
func (s *Subscription) Next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Event{}, false
	}
	evt := *s.pending
	s.pending = nil
	return evt, true
}

// Close tears the subscription down and prunes the record's entry when it
// was the last observer.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	f := s.feed
	f.mu.Lock()
	if set, ok := f.subs[s.rentalID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(f.subs, s.rentalID)
		}
	}
	f.mu.Unlock()

	close(s.events)
}
