// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import "github.com/traverse-foundation/traverse/session"

// Actions published on the coordinator's outbound stream. These are
// the only state the flow leaks upward; ancestor coordinators observe
// them instead of inspecting internal state.

// RoomPresented reports that a room's screen is now on the stack.
type RoomPresented struct {
	ID   string
	Name string
}

// RoomFailed reports that a requested room could not be resolved. The
// surrounding app may surface a transient error; the flow itself has
// already recovered.
type RoomFailed struct {
	ID     string
	Reason error
}

// ContentOpened reports that a content surface is now presented.
type ContentOpened struct {
	View      ContentKind
	PayloadID string
}

// ContentClosed reports that a content surface was dismissed.
type ContentClosed struct {
	View      ContentKind
	PayloadID string
}

// ReturnedToRoot reports that the flow unwound back to its root.
type ReturnedToRoot struct{}

// MediaUploaded reports a completed upload from the uploader surface.
type MediaUploaded struct {
	Upload session.Upload
}

// UploadFailed reports a failed upload; the uploader surface has been
// dismissed.
type UploadFailed struct {
	Name   string
	Reason error
}
