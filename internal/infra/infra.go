// Package infra provides shared infrastructure components used across
// the application: caching, upstream protection, and HTTP utilities.
package infra

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fixed or stepping clock.
type Clock func() time.Time

// --- Single-slot TTL cache ---

// Slot is a thread-safe cache holding at most one value. The value is fresh
// for ttl after it was stored; staleness is purely time-based and there is no
// key, so every reader sees the same value within the window.
type Slot[T any] struct {
	mu       sync.RWMutex
	value    T
	storedAt time.Time
	set      bool
	ttl      time.Duration
	now      Clock
}

// NewSlot creates an empty slot with the given TTL. A nil clock means
// time.Now.
func NewSlot[T any](ttl time.Duration, now Clock) *Slot[T] {
	if now == nil {
		now = time.Now
	}
	return &Slot[T]{ttl: ttl, now: now}
}

// Get returns the stored value if it is still fresh.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.freshLocked() {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Set stores a value, replacing whatever was there. Last write wins.
func (s *Slot[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	s.storedAt = s.now()
	s.set = true
	s.mu.Unlock()
}

// IsFresh reports whether the slot holds a value younger than the TTL.
func (s *Slot[T]) IsFresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freshLocked()
}

// StoredAt returns when the current value was stored, or the zero time.
func (s *Slot[T]) StoredAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storedAt
}

// freshLocked must be called with mu held.
func (s *Slot[T]) freshLocked() bool {
	return s.set && s.now().Sub(s.storedAt) < s.ttl
}
