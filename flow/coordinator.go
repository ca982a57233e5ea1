// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/traverse-foundation/traverse/lib/clock"
)

// Action is a high-level navigational outcome published for ancestor
// coordinators: "room X is now presented", "returned to root", and so
// on. Actions are the only state a coordinator leaks upward; ancestors
// never inspect internal state directly.
type Action any

// TraceSink receives a record of every successful transition. The
// observe package provides implementations; a nil sink disables
// tracing.
type TraceSink interface {
	Trace(route Route, at time.Time)
}

// Config assembles a Coordinator. Every collaborator is passed in
// explicitly; the coordinator holds no ambient globals.
type Config struct {
	// Initial is the root state the machine starts in. Required.
	Initial State

	// Table is the ordered route table. Required.
	Table Table

	// Effects is the ordered effect list. Every rule in Table must
	// be covered by at least one effect; New fails otherwise.
	Effects []Effect

	// Observers are invoked after every successful transition, in
	// order, on the event-loop goroutine. The any-to-any trace hook
	// of the machine.
	Observers []func(Route)

	// Logger receives structured transition logs. If nil, logging
	// is disabled.
	Logger *slog.Logger

	// Trace receives a record of every successful transition,
	// timestamped with Clock. Optional.
	Trace TraceSink

	// Clock supplies trace timestamps. Defaults to clock.Real().
	Clock clock.Clock

	// OnRejected is invoked for events no rule accepts, and for
	// events Submit drops because the queue is full or the
	// coordinator has stopped. Optional; rejection is otherwise a
	// silent no-op. Domain flows use this to release resources a
	// rejected event carries. Processed rejections arrive on the
	// loop goroutine, dropped ones on the submitter's; the hook
	// must be safe for both.
	OnRejected func(event Event, state State)

	// OnInternalError is invoked instead of panicking when the
	// coordinator detects an internal-consistency violation: an
	// accepted transition with no matching effect, a Build whose
	// output contradicts its rule's declared kind, or a nil
	// destination. The loop halts after the hook returns; the
	// machine refuses to continue past table drift.
	OnInternalError func(route Route, err error)

	// QueueSize is the inbound event buffer. Defaults to 64.
	QueueSize int

	// ActionBuffer is the outbound action stream buffer. Defaults
	// to 16.
	ActionBuffer int
}

// Coordinator is the hierarchical navigation state machine. One
// coordinator exists per navigation scope; construct it with New,
// start it with Start, and release it with Close when the scope ends.
type Coordinator struct {
	table     Table
	effects   []Effect
	observers []func(Route)
	logger    *slog.Logger
	trace     TraceSink
	clock     clock.Clock

	onRejected      func(Event, State)
	onInternalError func(Route, error)

	inbox   chan submission
	actions chan Action
	quit    chan struct{}
	done    chan struct{}

	closeOnce sync.Once

	mu    sync.Mutex
	state State

	loopCtx    context.Context
	loopCancel context.CancelFunc
}

type submission struct {
	event    Event
	animated bool
	// accepted, when non-nil, receives whether a rule accepted the
	// event, after the synchronous part of its effect has run.
	accepted chan bool
}

// New builds a Coordinator and verifies the route table against the
// effect list. It does not start the event loop; call Start.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Initial == nil {
		return nil, fmt.Errorf("flow: Config.Initial is required")
	}
	if len(cfg.Table.rules) == 0 {
		return nil, fmt.Errorf("flow: Config.Table has no rules")
	}
	if err := CheckCoverage(cfg.Table, cfg.Effects); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	actionBuffer := cfg.ActionBuffer
	if actionBuffer <= 0 {
		actionBuffer = 16
	}

	return &Coordinator{
		table:           cfg.Table,
		effects:         cfg.Effects,
		observers:       cfg.Observers,
		logger:          logger,
		trace:           cfg.Trace,
		clock:           clk,
		onRejected:      cfg.OnRejected,
		onInternalError: cfg.OnInternalError,
		inbox:           make(chan submission, queueSize),
		actions:         make(chan Action, actionBuffer),
		quit:            make(chan struct{}),
		done:            make(chan struct{}),
		state:           cfg.Initial,
	}, nil
}

// Start launches the event-loop goroutine. The loop runs until Close
// is called or ctx is cancelled. Start must be called exactly once.
func (c *Coordinator) Start(ctx context.Context) {
	c.loopCtx, c.loopCancel = context.WithCancel(ctx)
	go c.loop()
}

// Close stops the event loop and waits for it to exit. Pending
// submissions that have not begun processing are rejected through
// the rejection hook. Close is idempotent; ctx bounds the wait.
func (c *Coordinator) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		close(c.quit)
		if c.loopCancel != nil {
			c.loopCancel()
		}
	})
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flow: waiting for coordinator shutdown: %w", ctx.Err())
	}
}

// Submit enqueues an event for processing, the only entry point for
// navigation requests. animated is passed through to the effect via
// the Route. Submit never blocks: if the queue is full or the
// coordinator has stopped, the event is dropped through the
// rejection hook, matching the rule that a stuck UI must not
// deadlock its drivers. Events that carry resources get released by
// the hook instead of leaking.
func (c *Coordinator) Submit(event Event, animated bool) {
	select {
	case <-c.quit:
		c.drop(event, "coordinator closed")
		return
	default:
	}
	select {
	case c.inbox <- submission{event: event, animated: animated}:
	case <-c.quit:
		c.drop(event, "coordinator closed")
	default:
		c.drop(event, "event queue full")
	}
}

// drop discards an event that never reached the loop, routing it
// through the rejection hook so carried resources are released.
func (c *Coordinator) drop(event Event, reason string) {
	c.logger.Warn("dropping event", "event", event.Kind(), "reason", reason)
	if c.onRejected != nil {
		c.onRejected(event, c.State())
	}
}

// SubmitWait enqueues an event and blocks until it has been processed,
// reporting whether a rule accepted it. Never call SubmitWait from an
// effect handler: the handler runs on the loop goroutine and the wait
// would deadlock.
func (c *Coordinator) SubmitWait(ctx context.Context, event Event, animated bool) (bool, error) {
	reply := make(chan bool, 1)
	select {
	case c.inbox <- submission{event: event, animated: animated, accepted: reply}:
	case <-c.quit:
		return false, fmt.Errorf("flow: coordinator closed")
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case accepted := <-reply:
		return accepted, nil
	case <-c.done:
		return false, fmt.Errorf("flow: coordinator halted before processing event %s", event.Kind())
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// State returns a snapshot of the current state. The value may be
// superseded by the time the caller inspects it; only effects and
// observers see a settled state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Actions returns the outbound action stream. The channel is never
// closed; consumers should also select on their own shutdown signal.
func (c *Coordinator) Actions() <-chan Action {
	return c.actions
}

// Publish emits an action on the outbound stream. Called by effect
// handlers (and their spawned workers) to report navigational
// outcomes upward. If no consumer keeps up, the action is dropped
// with a warning rather than blocking the loop.
func (c *Coordinator) Publish(action Action) {
	select {
	case c.actions <- action:
	default:
		c.logger.Warn("action stream full, dropping action", "action", fmt.Sprintf("%T", action))
	}
}

// Done is closed when the event loop has exited, either through Close
// or after an internal-consistency halt.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			c.drainInbox()
			return
		case sub := <-c.inbox:
			if !c.process(sub) {
				return
			}
		}
	}
}

// drainInbox rejects submissions still queued at shutdown so their
// events release carried resources and waiting SubmitWait callers
// unblock.
func (c *Coordinator) drainInbox() {
	for {
		select {
		case sub := <-c.inbox:
			c.drop(sub.event, "coordinator closed")
			if sub.accepted != nil {
				sub.accepted <- false
			}
		default:
			return
		}
	}
}

// process handles one submission. It returns false when the loop must
// halt (internal-consistency violation).
func (c *Coordinator) process(sub submission) bool {
	from := c.State()

	to, ok := c.table.Resolve(sub.event, from)
	if !ok {
		c.logger.Debug("transition rejected", "event", sub.event.Kind(), "state", from.Kind())
		if c.onRejected != nil {
			c.onRejected(sub.event, from)
		}
		if sub.accepted != nil {
			sub.accepted <- false
		}
		return true
	}

	route := Route{From: from, Event: sub.event, To: to, Animated: sub.animated}
	if to == nil {
		return c.internalError(route, fmt.Errorf("flow: rule for event %s built a nil destination", sub.event.Kind()))
	}

	c.setState(to)

	handled := false
	for _, effect := range c.effects {
		if effect.matches(route) {
			effect.Run(c.loopCtx, route)
			handled = true
			break
		}
	}
	if !handled {
		// The construction-time coverage check makes this reachable
		// only when a Build's output disagrees with its declared
		// kind. Either way the tables have drifted; refuse to
		// continue.
		return c.internalError(route, fmt.Errorf("flow: no effect for transition %s: %s -> %s",
			sub.event.Kind(), from.Kind(), to.Kind()))
	}

	if sub.accepted != nil {
		sub.accepted <- true
	}

	for _, observer := range c.observers {
		observer(route)
	}
	if c.trace != nil {
		c.trace.Trace(route, c.clock.Now())
	}
	c.logger.Debug("transition",
		"event", sub.event.Kind(),
		"from", from.Kind(),
		"to", to.Kind(),
		"animated", sub.animated)
	return true
}

func (c *Coordinator) internalError(route Route, err error) bool {
	if c.onInternalError == nil {
		panic(err)
	}
	c.logger.Error("internal consistency violation, halting", "error", err)
	c.onInternalError(route, err)
	return false
}

func (c *Coordinator) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}
