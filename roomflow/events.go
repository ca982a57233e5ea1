// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import (
	"github.com/traverse-foundation/traverse/flow"
	"github.com/traverse-foundation/traverse/session"
)

// Event kinds of the room flow.
const (
	EventOpenRoom        flow.Kind = "openRoom"
	EventRoomResolved    flow.Kind = "roomResolved"
	EventRoomUnavailable flow.Kind = "roomUnavailable"
	EventOpenContent     flow.Kind = "openContent"
	EventDismissContent  flow.Kind = "dismissContent"
	EventCloseRoom       flow.Kind = "closeRoom"
	EventReset           flow.Kind = "reset"
)

// OpenRoom requests navigation to a room. The machine stays in its
// prior state while the room resolves; RoomResolved or
// RoomUnavailable follows.
type OpenRoom struct {
	ID string
}

func (OpenRoom) Kind() flow.Kind { return EventOpenRoom }

// RoomResolved reports a completed asynchronous room resolution,
// carrying the opened timeline handle. If the resolution is stale
// because a different room was requested meanwhile, the event is rejected
// and the handle is closed by the coordinator's rejection hook.
type RoomResolved struct {
	Info     session.RoomInfo
	Timeline *session.Timeline
}

func (RoomResolved) Kind() flow.Kind { return EventRoomResolved }

// RoomUnavailable reports a failed room resolution. The machine stays
// where it was; no screen is presented.
type RoomUnavailable struct {
	ID     string
	Reason error
}

func (RoomUnavailable) Kind() flow.Kind { return EventRoomUnavailable }

// OpenContent requests a content surface over the current state.
type OpenContent struct {
	View    ContentKind
	Payload ContentPayload
}

func (OpenContent) Kind() flow.Kind { return EventOpenContent }

// DismissContent requests (or reports) dismissal of a content
// surface. FromSurface marks dismissals reported by the presentation
// surface's own completion callback, whose UI is already gone; the
// effect then skips the redundant presenter command.
type DismissContent struct {
	View        ContentKind
	PayloadID   string
	FromSurface bool
}

func (DismissContent) Kind() flow.Kind { return EventDismissContent }

// CloseRoom requests (or reports) leaving the current room back to
// root. ID names the room being closed so stale pop callbacks for a
// superseded room are rejected.
type CloseRoom struct {
	ID          string
	FromSurface bool
}

func (CloseRoom) Kind() flow.Kind { return EventCloseRoom }

// Reset unwinds everything back to root, from any state.
type Reset struct{}

func (Reset) Kind() flow.Kind { return EventReset }
