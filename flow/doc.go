// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package flow implements a hierarchical navigation state machine for
// multi-screen applications.
//
// A Coordinator owns a single State value, the source of truth for
// "what is on screen" within one navigation scope. Drivers request
// changes by submitting Events; an ordered route Table maps
// (event, current state) pairs to destination states, and an Effect
// list maps accepted transitions to the presentation work they imply.
// UI commands are always consequences of state transitions, never
// causes: nothing outside the coordinator mutates what is displayed.
//
// All submissions are processed by one event-loop goroutine, so no two
// transitions ever execute concurrently against the same state. Effect
// handlers run on that goroutine; handlers that need asynchronous
// domain work (resolving a room, uploading a file) spawn it and feed
// the result back as a follow-up Event. Between request and
// resolution the machine stays in its prior state.
//
// Every non-root State embeds the state it overlays, so "back" is
// always computable from the state value alone, with no external lookup
// and no history stack to drift out of sync.
//
// The route table and the effect list are validated against each
// other at construction: a rule with no covering effect is a
// configuration defect and New refuses to build the coordinator. If a
// transition with no matching effect is reached anyway (possible only
// through wildcard rules whose built destination disagrees with the
// declared kind), the coordinator halts rather than silently ignoring
// the transition.
package flow
