// Package state holds the shared UI state as named channels. Every channel
// declares the writers allowed to change it; a writer obtains a Setter by
// binding to the channel, and binding fails for anyone not on the list.
// Readers only see the Reader interface.
package state

import (
	"errors"
	"fmt"
)

// ErrNotWriter is returned when a writer binds to a channel it does not own.
var ErrNotWriter = errors.New("writer does not own channel")

// Writer names a rule or view allowed to mutate state.
type Writer string

const (
	WriterDismissRule  Writer = "dismiss-rule"
	WriterMountRule    Writer = "mount-rule"
	WriterURLRule      Writer = "url-rule"
	WriterViewModeRule Writer = "view-mode-rule"
	WriterOverlay      Writer = "overlay"
	WriterMapView      Writer = "map-view"
	WriterListView     Writer = "list-view"
	WriterSearchPanel  Writer = "search-panel"
)

// Reader is the read side of a channel.
type Reader[T any] interface {
	Name() string
	Get() T
	// Version increases on every write, including writes of an equal value.
	Version() uint64
}

// Slot is one named channel.
type Slot[T any] struct {
	name    string
	value   T
	version uint64
	writers map[Writer]struct{}
}

func NewSlot[T any](name string, initial T, writers ...Writer) *Slot[T] {
	s := &Slot[T]{
		name:    name,
		value:   initial,
		writers: make(map[Writer]struct{}, len(writers)),
	}
	for _, w := range writers {
		s.writers[w] = struct{}{}
	}
	return s
}

func (s *Slot[T]) Name() string    { return s.name }
func (s *Slot[T]) Get() T          { return s.value }
func (s *Slot[T]) Version() uint64 { return s.version }

// Owns reports whether w is in the channel's writer-set.
func (s *Slot[T]) Owns(w Writer) bool {
	_, ok := s.writers[w]
	return ok
}

// Bind returns a Setter for w, or ErrNotWriter.
func (s *Slot[T]) Bind(w Writer) (Setter[T], error) {
	if !s.Owns(w) {
		return Setter[T]{}, fmt.Errorf("%s on %s: %w", w, s.name, ErrNotWriter)
	}
	return Setter[T]{slot: s, writer: w}, nil
}

// MustBind is Bind for wiring done at startup, where a failure is a
// programming error.
func (s *Slot[T]) MustBind(w Writer) Setter[T] {
	set, err := s.Bind(w)
	if err != nil {
		panic(err)
	}
	return set
}

// Setter is a bound write handle.
type Setter[T any] struct {
	slot   *Slot[T]
	writer Writer
}

func (s Setter[T]) Set(v T) {
	s.slot.value = v
	s.slot.version++
}

func (s Setter[T]) Writer() Writer { return s.writer }

// Valid reports whether the setter came from a successful Bind.
func (s Setter[T]) Valid() bool { return s.slot != nil }
