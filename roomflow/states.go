// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package roomflow

import (
	"fmt"

	"github.com/traverse-foundation/traverse/flow"
)

// State kinds of the room flow.
const (
	KindRoot    flow.Kind = "root"
	KindRoom    flow.Kind = "room"
	KindContent flow.Kind = "content"
)

// Root is the initial state: no room presented.
type Root struct{}

func (Root) Kind() flow.Kind    { return KindRoot }
func (Root) Parent() flow.State { return nil }
func (Root) String() string     { return "root" }

// Room is the detail state for one presented room.
type Room struct {
	// ID is the room identifier.
	ID string
	// Name is the room's display name at resolution time.
	Name string
}

func (Room) Kind() flow.Kind { return KindRoom }

// Parent of a room is always the root: rooms never stack.
func (Room) Parent() flow.State { return Root{} }

func (room Room) String() string { return fmt.Sprintf("room(%s)", room.ID) }

// ContentKind identifies which content surface is shown over a room.
type ContentKind string

const (
	// MediaViewer shows an image or video fullscreen.
	MediaViewer ContentKind = "mediaViewer"
	// FileUploader runs the attach-and-upload flow.
	FileUploader ContentKind = "fileUploader"
	// ReactionPicker shows the emoji reaction palette.
	ReactionPicker ContentKind = "reactionPicker"
	// ReportContent shows the report-message form.
	ReportContent ContentKind = "reportContent"
)

// Overlay reports whether the surface presents as a sheet/overlay.
// The uploader pushes onto the stack instead; everything else floats.
func (kind ContentKind) Overlay() bool { return kind != FileUploader }

// ContentPayload carries the data a content surface displays.
type ContentPayload struct {
	// ID identifies the item the surface shows (media event ID,
	// message ID for reactions or reports). Dismissal staleness
	// checks compare against it.
	ID string
	// Title is a human-readable caption, possibly empty.
	Title string
	// URI locates the content for viewers.
	URI string
	// Name is the filename for uploads.
	Name string
	// Data is the file body for uploads.
	Data []byte
}

// Content is a content surface presented over a parent state. The
// parent is recorded in full: dismissal returns exactly there and
// nowhere else.
type Content struct {
	// Over is the state the surface overlays: a Room, or Root when
	// the surface was opened directly from root (e.g. a deep-linked
	// media viewer).
	Over flow.State
	// View is the surface kind.
	View ContentKind
	// Payload is what the surface shows.
	Payload ContentPayload
}

func (Content) Kind() flow.Kind { return KindContent }

func (content Content) Parent() flow.State { return content.Over }

func (content Content) String() string {
	return fmt.Sprintf("content(%s, %s, over %v)", content.View, content.Payload.ID, content.Over)
}
