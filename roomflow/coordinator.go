// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/traverse-foundation/traverse/flow"
	"github.com/traverse-foundation/traverse/lib/clock"
	"github.com/traverse-foundation/traverse/session"
)

// Config assembles a room flow Coordinator. Session, Presenter, and
// Screens are required; everything else is optional.
type Config struct {
	// Session resolves rooms and opens timelines.
	Session session.Session

	// Presenter executes presentation commands.
	Presenter Presenter

	// Screens builds the presentable units.
	Screens ScreenFactory

	// Logger receives structured logs. Nil disables logging.
	Logger *slog.Logger

	// Trace receives a record of every transition. Optional.
	Trace flow.TraceSink

	// Observers are invoked after every transition. Optional.
	Observers []func(flow.Route)

	// Clock supplies trace timestamps. Defaults to clock.Real().
	Clock clock.Clock
}

// Coordinator drives the room navigation flow. Construct with New,
// start with Start, and Close when the hosting scope ends. All
// navigation entry points are safe to call from any goroutine; the
// work itself is serialized on one event loop.
type Coordinator struct {
	core      *flow.Coordinator
	session   session.Session
	presenter Presenter
	screens   ScreenFactory
	logger    *slog.Logger

	// Loop-affine fields: written only by effect handlers and read
	// only by guards, both of which run on the event-loop goroutine.
	// pendingRoom is the target of the most recent OpenRoom request;
	// timeline is the exclusively owned handle of the current room.
	pendingRoom string
	timeline    *session.Timeline
}

// New builds the coordinator and validates its route table against
// its effect list.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("roomflow: Config.Session is required")
	}
	if cfg.Presenter == nil {
		return nil, fmt.Errorf("roomflow: Config.Presenter is required")
	}
	if cfg.Screens == nil {
		return nil, fmt.Errorf("roomflow: Config.Screens is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Coordinator{
		session:   cfg.Session,
		presenter: cfg.Presenter,
		screens:   cfg.Screens,
		logger:    logger,
	}

	table, err := c.routes()
	if err != nil {
		return nil, err
	}

	core, err := flow.New(flow.Config{
		Initial:    Root{},
		Table:      table,
		Effects:    c.effects(),
		Observers:  cfg.Observers,
		Logger:     logger,
		Trace:      cfg.Trace,
		Clock:      cfg.Clock,
		OnRejected: c.releaseRejected,
	})
	if err != nil {
		return nil, err
	}
	c.core = core
	return c, nil
}

// Start launches the flow's event loop.
func (c *Coordinator) Start(ctx context.Context) {
	c.core.Start(ctx)
}

// Close stops the event loop and releases the owned timeline handle.
// The handle is only touched once the loop has confirmably exited;
// until then effect handlers may still be writing it.
func (c *Coordinator) Close(ctx context.Context) error {
	err := c.core.Close(ctx)
	select {
	case <-c.core.Done():
	default:
		return err
	}
	if c.timeline != nil {
		_ = c.timeline.Close()
		c.timeline = nil
	}
	return err
}

// State returns the current navigation state.
func (c *Coordinator) State() flow.State {
	return c.core.State()
}

// Actions returns the outbound action stream for ancestor
// coordinators.
func (c *Coordinator) Actions() <-chan flow.Action {
	return c.core.Actions()
}

// Submit feeds a raw event to the flow. The typed entry points below
// are usually more convenient.
func (c *Coordinator) Submit(event flow.Event, animated bool) {
	c.core.Submit(event, animated)
}

// OpenRoom requests navigation to the room with the given ID.
func (c *Coordinator) OpenRoom(roomID string, animated bool) {
	c.core.Submit(OpenRoom{ID: roomID}, animated)
}

// OpenContent requests a content surface over the current state.
func (c *Coordinator) OpenContent(view ContentKind, payload ContentPayload, animated bool) {
	c.core.Submit(OpenContent{View: view, Payload: payload}, animated)
}

// DismissContent requests dismissal of the current content surface.
func (c *Coordinator) DismissContent(view ContentKind, payloadID string, animated bool) {
	c.core.Submit(DismissContent{View: view, PayloadID: payloadID}, animated)
}

// CloseRoom requests leaving the room with the given ID back to root.
func (c *Coordinator) CloseRoom(roomID string, animated bool) {
	c.core.Submit(CloseRoom{ID: roomID}, animated)
}

// Reset unwinds the flow to root from any state.
func (c *Coordinator) Reset() {
	c.core.Submit(Reset{}, false)
}

// releaseRejected is the rejection hook. Most rejections are benign
// no-ops, but a rejected RoomResolved carries a live timeline handle
// from a stale resolution that must not leak.
func (c *Coordinator) releaseRejected(event flow.Event, state flow.State) {
	if resolved, ok := event.(RoomResolved); ok && resolved.Timeline != nil {
		c.logger.Debug("discarding stale room resolution",
			"room", resolved.Info.ID,
			"state", state.Kind())
		_ = resolved.Timeline.Close()
	}
}
