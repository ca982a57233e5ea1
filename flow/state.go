// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flow

// Kind discriminates state and event shapes in route tables and
// effect lists. Kinds are compared as opaque strings; applications
// declare their own constants.
type Kind string

// Wildcard matches any kind in a Rule's From field or any field of an
// Effect. It is never a valid kind for a concrete state or event.
const Wildcard Kind = "*"

// State is the tagged variant representing one displayed screen
// context. Implementations carry the identifying data of that context
// (for example a room ID) and, for overlay states, the full state
// they overlay.
type State interface {
	// Kind identifies the state's shape for route and effect matching.
	Kind() Kind

	// Parent returns the state this state overlays, or nil for
	// root-level states. Every non-root state must return a non-nil
	// parent so dismissal never needs an external lookup.
	Parent() State
}

// Event is a requested transition. It carries whatever data the
// destination state's constructor needs, or nothing for a bare
// dismissal.
type Event interface {
	// Kind identifies the event's shape for route and effect matching.
	Kind() Kind
}

// Lineage returns state followed by its chain of parents, outermost
// last. Useful for breadcrumb displays and reset-to-root walks.
func Lineage(state State) []State {
	var chain []State
	for s := state; s != nil; s = s.Parent() {
		chain = append(chain, s)
	}
	return chain
}

// Root returns the outermost ancestor of state (state itself if it
// has no parent).
func Root(state State) State {
	for state != nil && state.Parent() != nil {
		state = state.Parent()
	}
	return state
}
