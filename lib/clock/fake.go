// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a Clock whose time only moves when a test calls Advance or
// SetTime. After-channels fire deterministically during Advance, in
// deadline order, before Advance returns.
//
// Fake is safe for concurrent use, but tests get the clearest results
// by driving it from a single goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

// NewFake returns a Fake starting at a fixed, arbitrary instant.
// Using a constant start time keeps recorded timestamps stable
// across test runs.
func NewFake() *Fake {
	return &Fake{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

// Now returns the fake's current time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// After returns a channel that fires when the fake's time reaches
// now+d. If d <= 0 the channel fires immediately.
func (fake *Fake) After(d time.Duration) <-chan time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	ch := make(chan time.Time, 1)
	deadline := fake.now.Add(d)
	if d <= 0 {
		ch <- fake.now
		return ch
	}
	fake.waiters = append(fake.waiters, &fakeWaiter{deadline: deadline, ch: ch})
	return ch
}

// Advance moves the fake's time forward by d and fires every waiter
// whose deadline has been reached, in deadline order.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.setTimeLocked(fake.now.Add(d))
}

// SetTime moves the fake's time to t. Panics if t is earlier than the
// current fake time: time never moves backward.
func (fake *Fake) SetTime(t time.Time) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if t.Before(fake.now) {
		panic("clock: SetTime would move fake time backward")
	}
	fake.setTimeLocked(t)
}

func (fake *Fake) setTimeLocked(t time.Time) {
	fake.now = t

	var due []*fakeWaiter
	remaining := fake.waiters[:0]
	for _, waiter := range fake.waiters {
		if !waiter.deadline.After(t) {
			due = append(due, waiter)
		} else {
			remaining = append(remaining, waiter)
		}
	}
	fake.waiters = remaining

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, waiter := range due {
		waiter.ch <- waiter.deadline
	}
}
