// Package store provides a small observable state container. State changes
// happen only through Dispatch; side effects such as persistence are
// attached as listeners so transitions themselves stay pure.
package store

import (
	"context"
	"errors"
	"sync"
)

// Action is a pure transition from one state to the next.
type Action[S any] func(S) S

// Listener observes a change. It runs after the new state is in place, in
// subscription order.
type Listener[S any] func(ctx context.Context, prev, next S) error

// Store holds a value of type S and notifies listeners when it changes.
type Store[S any] struct {
	mu        sync.Mutex
	state     S
	equal     func(a, b S) bool
	listeners []Listener[S]
}

// New creates a store seeded with initial. equal decides whether a dispatch
// changed anything; listeners are skipped when it did not.
func New[S any](initial S, equal func(a, b S) bool) *Store[S] {
	return &Store[S]{state: initial, equal: equal}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[S]) Subscribe(l Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

// Dispatch applies action and notifies listeners. Dispatches are serialized.
// The new state is kept even if a listener fails; listener errors are joined
// and returned so the caller can report them.
func (s *Store[S]) Dispatch(ctx context.Context, action Action[S]) (S, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := action(prev)
	if s.equal != nil && s.equal(prev, next) {
		return next, nil
	}
	s.state = next

	var errs []error
	for _, l := range s.listeners {
		if l == nil {
			continue
		}
		if err := l(ctx, prev, next); err != nil {
			errs = append(errs, err)
		}
	}
	return next, errors.Join(errs...)
}
