// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import "github.com/traverse-foundation/traverse/flow"

// routes builds the ordered route table. Rules are evaluated first
// match wins; every (event, state) pair not listed here is rejected.
// Guards compare event payloads against the current state (and the
// pending resolution target) so duplicate and stale requests fall
// through to rejection instead of re-running effects.
func (c *Coordinator) routes() (flow.Table, error) {
	stay := func(event flow.Event, from flow.State) flow.State { return from }

	return flow.NewTable(
		// Opening a room never changes state directly: the machine
		// waits in place for the resolution outcome.
		flow.Rule{
			Event: EventOpenRoom, From: KindRoot, To: KindRoot,
			Guard: func(event flow.Event, from flow.State) bool {
				return event.(OpenRoom).ID != ""
			},
			Build: stay,
		},
		flow.Rule{
			Event: EventOpenRoom, From: KindRoom, To: KindRoom,
			// Re-requesting the current room is an idempotent no-op.
			Guard: func(event flow.Event, from flow.State) bool {
				request := event.(OpenRoom)
				return request.ID != "" && request.ID != from.(Room).ID
			},
			Build: stay,
		},
		flow.Rule{
			Event: EventOpenRoom, From: KindContent, To: KindContent,
			Guard: func(event flow.Event, from flow.State) bool {
				return event.(OpenRoom).ID != ""
			},
			Build: stay,
		},

		// Resolution results are accepted only for the most recent
		// request; a slow resolution superseded by a newer one is
		// stale and rejected here.
		flow.Rule{
			Event: EventRoomResolved, From: KindRoot, To: KindRoom,
			Guard: c.resolutionIsCurrent,
			Build: buildResolvedRoom,
		},
		flow.Rule{
			Event: EventRoomResolved, From: KindRoom, To: KindRoom,
			Guard: c.resolutionIsCurrent,
			Build: buildResolvedRoom,
		},
		flow.Rule{
			Event: EventRoomResolved, From: KindContent, To: KindRoom,
			Guard: c.resolutionIsCurrent,
			Build: buildResolvedRoom,
		},

		// A failed resolution leaves the machine exactly where it
		// was; the effect only clears bookkeeping and reports.
		flow.Rule{
			Event: EventRoomUnavailable, From: KindRoot, To: KindRoot,
			Guard: c.failureIsCurrent, Build: stay,
		},
		flow.Rule{
			Event: EventRoomUnavailable, From: KindRoom, To: KindRoom,
			Guard: c.failureIsCurrent, Build: stay,
		},
		flow.Rule{
			Event: EventRoomUnavailable, From: KindContent, To: KindContent,
			Guard: c.failureIsCurrent, Build: stay,
		},

		// Content surfaces open over a room or directly over root,
		// recording the exact state they overlay.
		flow.Rule{
			Event: EventOpenContent, From: KindRoom, To: KindContent,
			Build: buildContent,
		},
		flow.Rule{
			Event: EventOpenContent, From: KindRoot, To: KindContent,
			Build: buildContent,
		},

		// Dismissal returns only to the recorded parent. The guard
		// matches the dismissal against the surface actually shown,
		// so a late callback from a superseded surface is rejected.
		flow.Rule{
			Event: EventDismissContent, From: KindContent, To: KindRoom,
			Guard: func(event flow.Event, from flow.State) bool {
				content := from.(Content)
				return content.Over.Kind() == KindRoom && dismissalMatches(event.(DismissContent), content)
			},
			Build: func(event flow.Event, from flow.State) flow.State { return from.Parent() },
		},
		flow.Rule{
			Event: EventDismissContent, From: KindContent, To: KindRoot,
			Guard: func(event flow.Event, from flow.State) bool {
				content := from.(Content)
				return content.Over.Kind() == KindRoot && dismissalMatches(event.(DismissContent), content)
			},
			Build: func(event flow.Event, from flow.State) flow.State { return from.Parent() },
		},

		// Closing a room names it; a stale pop callback for a room
		// no longer current is rejected.
		flow.Rule{
			Event: EventCloseRoom, From: KindRoom, To: KindRoot,
			Guard: func(event flow.Event, from flow.State) bool {
				return event.(CloseRoom).ID == from.(Room).ID
			},
			Build: func(event flow.Event, from flow.State) flow.State { return Root{} },
		},

		// Reset unwinds from anywhere.
		flow.Rule{
			Event: EventReset, From: flow.Wildcard, To: KindRoot,
			Build: func(event flow.Event, from flow.State) flow.State { return Root{} },
		},
	)
}

// resolutionIsCurrent accepts a RoomResolved event only when it
// answers the most recent OpenRoom request.
func (c *Coordinator) resolutionIsCurrent(event flow.Event, from flow.State) bool {
	return event.(RoomResolved).Info.ID == c.pendingRoom
}

// failureIsCurrent mirrors resolutionIsCurrent for failed lookups.
func (c *Coordinator) failureIsCurrent(event flow.Event, from flow.State) bool {
	return event.(RoomUnavailable).ID == c.pendingRoom
}

func buildResolvedRoom(event flow.Event, from flow.State) flow.State {
	info := event.(RoomResolved).Info
	return Room{ID: info.ID, Name: info.Name}
}

func buildContent(event flow.Event, from flow.State) flow.State {
	request := event.(OpenContent)
	return Content{Over: from, View: request.View, Payload: request.Payload}
}

func dismissalMatches(dismissal DismissContent, content Content) bool {
	return dismissal.View == content.View && dismissal.PayloadID == content.Payload.ID
}
