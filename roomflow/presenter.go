// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import "github.com/traverse-foundation/traverse/session"

// Screen is one presentable unit. The coordinator never looks inside
// a screen; it only moves screens through the presenter.
type Screen interface {
	// ScreenID identifies the screen for logging and debugging.
	ScreenID() string
}

// ScreenFactory builds screens for target states. Supplied by the
// embedding application; the coordinator passes in everything the
// screen needs.
type ScreenFactory interface {
	// RoomScreen builds the detail screen for a resolved room. The
	// timeline handle remains owned by the coordinator; the screen
	// only reads from it.
	RoomScreen(info session.RoomInfo, timeline *session.Timeline) Screen

	// ContentScreen builds the surface for a content state.
	ContentScreen(content Content) Screen
}

// Presenter is the navigation stack / overlay surface the coordinator
// commands. Implementations must invoke each completion callback
// exactly once per present call, whether the surface closes through
// an explicit Pop/DismissOverlay, a user gesture, or the platform
// itself, and must do so without holding internal locks, since the
// callback submits back into the coordinator.
type Presenter interface {
	// Push puts screen on top of the stack. onPop fires once when
	// the screen leaves the stack by any means.
	Push(screen Screen, onPop func())

	// PresentOverlay shows screen as a sheet/overlay. onDismiss
	// fires once when the overlay closes by any means.
	PresentOverlay(screen Screen, onDismiss func())

	// Pop removes the top stack screen.
	Pop()

	// DismissOverlay closes the current overlay, if any.
	DismissOverlay()
}
