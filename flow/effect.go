// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"fmt"
)

// Route is the context of one accepted transition, passed to the
// matching effect and to every observer.
type Route struct {
	// From is the state the machine left.
	From State
	// Event is the event that triggered the transition.
	Event Event
	// To is the state the machine entered. Already installed as the
	// coordinator's current state when the effect runs.
	To State
	// Animated reports whether the submitter asked for the
	// presentation change to animate.
	Animated bool
}

// EffectFunc performs the presentation or domain work implied by an
// accepted transition. It runs on the coordinator's event-loop
// goroutine: it may issue presenter commands directly and may spawn
// asynchronous work, but it must not block on the coordinator itself
// (use Submit, never SubmitWait, for follow-up events).
type EffectFunc func(ctx context.Context, route Route)

// Effect binds a transition shape to its handler. Any of the three
// kinds may be Wildcard. The first effect in the list that matches an
// accepted transition runs; the rest are skipped.
type Effect struct {
	Event Kind
	From  Kind
	To    Kind
	Run   EffectFunc
}

func (effect Effect) matches(route Route) bool {
	if effect.Event != Wildcard && effect.Event != route.Event.Kind() {
		return false
	}
	if effect.From != Wildcard && effect.From != route.From.Kind() {
		return false
	}
	if effect.To != Wildcard && effect.To != route.To.Kind() {
		return false
	}
	return true
}

// covers reports whether the effect can handle transitions produced
// by the rule, comparing declared kinds with wildcard matching.
func (effect Effect) covers(rule Rule) bool {
	if effect.Event != Wildcard && effect.Event != rule.Event {
		return false
	}
	if effect.From != Wildcard && rule.From != Wildcard && effect.From != rule.From {
		return false
	}
	if effect.To != Wildcard && effect.To != rule.To {
		return false
	}
	return true
}

// CheckCoverage verifies that every rule in the table has at least
// one effect that can handle the transitions it produces. A rule
// without a covering effect means the route table and the effect list
// have drifted apart: a build-time defect, reported before any
// transition runs.
//
// A rule with a Wildcard From is covered only by effects whose From
// is also Wildcard: the rule can fire from any state, so a
// state-specific effect cannot claim to cover it.
func CheckCoverage(table Table, effects []Effect) error {
	for i, rule := range table.Rules() {
		covered := false
		for _, effect := range effects {
			if rule.From == Wildcard && effect.From != Wildcard {
				continue
			}
			if effect.covers(rule) {
				covered = true
				break
			}
		}
		if !covered {
			return fmt.Errorf("flow: rule %d (%s: %s -> %s) has no covering effect", i, rule.Event, rule.From, rule.To)
		}
	}
	return nil
}
