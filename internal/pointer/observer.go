// Package pointer is the global pointer-event observer. Components subscribe
// for the lifetime of their owner and release the subscription when it ends.
package pointer

import "wander/internal/model"

// Handler receives a pointer event.
type Handler func(model.PointerEvent)

// Predicate reports whether an event originated inside a protected region.
// Protected events are not delivered to the subscription.
type Predicate func(model.PointerEvent) bool

type subscription struct {
	id        int
	handler   Handler
	protected Predicate
}

// Observer fans pointer events out to subscribers in subscription order.
type Observer struct {
	subs   []subscription
	nextID int
	seq    uint64
}

func New() *Observer {
	return &Observer{}
}

// Subscribe registers h. A nil protected predicate receives everything. The
// returned release func is idempotent.
func (o *Observer) Subscribe(h Handler, protected Predicate) (release func()) {
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription{id: id, handler: h, protected: protected})

	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// NextSeq stamps a new event. Handlers use Seq to recognize the event that
// armed them.
func (o *Observer) NextSeq() uint64 {
	o.seq++
	return o.seq
}

// Dispatch delivers ev to every subscriber whose protected predicate does not
// match. Subscribers released during dispatch still see the current event.
func (o *Observer) Dispatch(ev model.PointerEvent) {
	if ev.Seq == 0 {
		ev.Seq = o.NextSeq()
	}
	subs := append([]subscription(nil), o.subs...)
	for _, s := range subs {
		if s.protected != nil && s.protected(ev) {
			continue
		}
		s.handler(ev)
	}
}

// Len reports the number of live subscriptions.
func (o *Observer) Len() int { return len(o.subs) }

// InRegions protects events from any of the given regions.
func InRegions(regions ...model.Region) Predicate {
	return func(ev model.PointerEvent) bool {
		for _, r := range regions {
			if ev.Region == r {
				return true
			}
		}
		return false
	}
}

// NotButton protects every event that is not from button b.
func NotButton(b model.Button) Predicate {
	return func(ev model.PointerEvent) bool { return ev.Button != b }
}

// Any combines predicates; the event is protected if any of them match.
func Any(preds ...Predicate) Predicate {
	return func(ev model.PointerEvent) bool {
		for _, p := range preds {
			if p(ev) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(ev model.PointerEvent) bool { return !p(ev) }
}
