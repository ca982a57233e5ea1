// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowAdvances(t *testing.T) {
	t.Parallel()
	fake := NewFake()

	start := fake.Now()
	fake.Advance(5 * time.Minute)

	if got := fake.Now().Sub(start); got != 5*time.Minute {
		t.Errorf("Now after Advance: moved %v, want 5m", got)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	t.Parallel()
	fake := NewFake()

	ch := fake.After(time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before Advance")
	default:
	}

	fake.Advance(time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("After did not fire after Advance reached the deadline")
	}
}

func TestFakeAfterNonPositiveFiresImmediately(t *testing.T) {
	t.Parallel()
	fake := NewFake()

	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}

func TestFakeAfterFiresInDeadlineOrder(t *testing.T) {
	t.Parallel()
	fake := NewFake()

	late := fake.After(2 * time.Second)
	early := fake.After(time.Second)

	fake.Advance(3 * time.Second)

	earlyTime := <-early
	lateTime := <-late
	if !earlyTime.Before(lateTime) {
		t.Errorf("waiters fired out of deadline order: early=%v late=%v", earlyTime, lateTime)
	}
}

func TestFakeSetTimeBackwardPanics(t *testing.T) {
	t.Parallel()
	fake := NewFake()

	defer func() {
		if recover() == nil {
			t.Fatal("SetTime into the past did not panic")
		}
	}()
	fake.SetTime(fake.Now().Add(-time.Second))
}
