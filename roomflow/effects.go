// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import (
	"context"

	"github.com/traverse-foundation/traverse/flow"
)

// effects builds the ordered effect list. Each entry handles one
// transition category; flow.New verifies at construction that every
// route rule is covered.
func (c *Coordinator) effects() []flow.Effect {
	return []flow.Effect{
		{Event: EventOpenRoom, From: flow.Wildcard, To: flow.Wildcard, Run: c.effectResolveRoom},
		{Event: EventRoomResolved, From: flow.Wildcard, To: KindRoom, Run: c.effectPresentRoom},
		{Event: EventRoomUnavailable, From: flow.Wildcard, To: flow.Wildcard, Run: c.effectRoomUnavailable},
		{Event: EventOpenContent, From: flow.Wildcard, To: KindContent, Run: c.effectPresentContent},
		{Event: EventDismissContent, From: KindContent, To: flow.Wildcard, Run: c.effectDismissContent},
		{Event: EventCloseRoom, From: KindRoom, To: KindRoot, Run: c.effectCloseRoom},
		{Event: EventReset, From: flow.Wildcard, To: KindRoot, Run: c.effectReset},
	}
}

// effectResolveRoom starts the asynchronous room resolution. The
// machine has not moved; it is waiting in route.From for the outcome.
// Resolution and timeline opening both happen off the loop; the
// outcome re-enters as RoomResolved or RoomUnavailable. Staleness is
// handled on re-entry, not by cancelling the lookup: the route guard
// compares the result against the most recent request.
func (c *Coordinator) effectResolveRoom(ctx context.Context, route flow.Route) {
	request := route.Event.(OpenRoom)
	c.pendingRoom = request.ID

	go func() {
		info, err := c.session.ResolveRoom(ctx, request.ID)
		if err != nil {
			c.logger.Info("room resolution failed", "room", request.ID, "error", err)
			c.core.Submit(RoomUnavailable{ID: request.ID, Reason: err}, route.Animated)
			return
		}
		timeline, err := c.session.OpenTimeline(ctx, request.ID)
		if err != nil {
			c.logger.Info("opening timeline failed", "room", request.ID, "error", err)
			c.core.Submit(RoomUnavailable{ID: request.ID, Reason: err}, route.Animated)
			return
		}
		c.core.Submit(RoomResolved{Info: info, Timeline: timeline}, route.Animated)
	}()
}

// effectPresentRoom installs a resolved room: tear down whatever the
// flow was showing, adopt the new timeline handle, and push the room
// screen. The pushed screen's pop callback re-enters as a
// surface-initiated CloseRoom.
func (c *Coordinator) effectPresentRoom(ctx context.Context, route flow.Route) {
	resolved := route.Event.(RoomResolved)
	c.pendingRoom = ""

	// Remove a content surface left from the previous state.
	if content, ok := route.From.(Content); ok {
		c.removeSurface(content)
	}

	// Exactly one room screen and one timeline handle are live at a
	// time: leaving the previous room releases both.
	if previousRoom(route.From) != nil {
		c.presenter.Pop()
	}
	if c.timeline != nil {
		_ = c.timeline.Close()
	}
	c.timeline = resolved.Timeline

	roomID := resolved.Info.ID
	screen := c.screens.RoomScreen(resolved.Info, resolved.Timeline)
	c.presenter.Push(screen, func() {
		c.core.Submit(CloseRoom{ID: roomID, FromSurface: true}, false)
	})

	c.core.Publish(RoomPresented{ID: resolved.Info.ID, Name: resolved.Info.Name})
}

// effectRoomUnavailable recovers from a failed resolution. The
// machine never left its prior state and no presentation command was
// issued; only the pending marker is cleared and the failure
// reported upward.
func (c *Coordinator) effectRoomUnavailable(ctx context.Context, route flow.Route) {
	failure := route.Event.(RoomUnavailable)
	if c.pendingRoom == failure.ID {
		c.pendingRoom = ""
	}
	c.core.Publish(RoomFailed{ID: failure.ID, Reason: failure.Reason})
}

// effectPresentContent presents a content surface and wires its
// completion callback back into the flow. The uploader additionally
// kicks off the upload itself and dismisses its surface when the
// upload finishes either way.
func (c *Coordinator) effectPresentContent(ctx context.Context, route flow.Route) {
	content := route.To.(Content)
	screen := c.screens.ContentScreen(content)

	view, payloadID := content.View, content.Payload.ID
	completion := func() {
		c.core.Submit(DismissContent{View: view, PayloadID: payloadID, FromSurface: true}, false)
	}
	if content.View.Overlay() {
		c.presenter.PresentOverlay(screen, completion)
	} else {
		c.presenter.Push(screen, completion)
	}

	c.core.Publish(ContentOpened{View: content.View, PayloadID: content.Payload.ID})

	if content.View == FileUploader {
		c.startUpload(ctx, content)
	}
}

// startUpload runs the uploader surface's work: process the attached
// file, report the outcome, and dismiss the surface.
func (c *Coordinator) startUpload(ctx context.Context, content Content) {
	payload := content.Payload
	go func() {
		upload, err := c.session.UploadMedia(ctx, payload.Name, payload.Data)
		if err != nil {
			c.logger.Info("upload failed", "name", payload.Name, "error", err)
			c.core.Publish(UploadFailed{Name: payload.Name, Reason: err})
		} else {
			c.core.Publish(MediaUploaded{Upload: upload})
		}
		c.core.Submit(DismissContent{View: FileUploader, PayloadID: payload.ID}, false)
	}()
}

// effectDismissContent removes the content surface and returns to its
// recorded parent. When the dismissal was reported by the surface's
// own completion callback the UI is already gone, so no presenter
// command is issued. Both dismissal paths converge on one
// transition and one teardown.
func (c *Coordinator) effectDismissContent(ctx context.Context, route flow.Route) {
	dismissal := route.Event.(DismissContent)
	content := route.From.(Content)

	if !dismissal.FromSurface {
		c.removeSurface(content)
	}
	c.core.Publish(ContentClosed{View: content.View, PayloadID: content.Payload.ID})
}

// effectCloseRoom leaves the current room: pop its screen (unless the
// surface already popped itself), release the timeline handle, and
// report the return to root.
func (c *Coordinator) effectCloseRoom(ctx context.Context, route flow.Route) {
	closing := route.Event.(CloseRoom)
	if !closing.FromSurface {
		c.presenter.Pop()
	}
	if c.timeline != nil {
		_ = c.timeline.Close()
		c.timeline = nil
	}
	c.core.Publish(ReturnedToRoot{})
}

// effectReset unwinds to root from any state: content surface first,
// then the room screen and its timeline.
func (c *Coordinator) effectReset(ctx context.Context, route flow.Route) {
	c.pendingRoom = ""

	if content, ok := route.From.(Content); ok {
		c.removeSurface(content)
	}
	if previousRoom(route.From) != nil {
		c.presenter.Pop()
	}
	if c.timeline != nil {
		_ = c.timeline.Close()
		c.timeline = nil
	}
	if route.From.Kind() != KindRoot {
		c.core.Publish(ReturnedToRoot{})
	}
}

// removeSurface issues the presenter command that closes a content
// surface, according to how its kind presents.
func (c *Coordinator) removeSurface(content Content) {
	if content.View.Overlay() {
		c.presenter.DismissOverlay()
	} else {
		c.presenter.Pop()
	}
}

// previousRoom returns the Room in state's lineage, or nil.
func previousRoom(state flow.State) flow.State {
	for s := state; s != nil; s = s.Parent() {
		if s.Kind() == KindRoom {
			return s
		}
	}
	return nil
}
