// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync"
	"time"
)

// RoomInfo identifies a resolved room.
type RoomInfo struct {
	// ID is the room's unique identifier.
	ID string
	// Name is the display name, possibly empty.
	Name string
	// Topic is the room topic, possibly empty.
	Topic string
}

// TimelineItem is one entry in a room's timeline stream.
type TimelineItem struct {
	ID     string
	Sender string
	Body   string
	At     time.Time
}

// Upload describes a processed media upload.
type Upload struct {
	// Name is the original filename.
	Name string
	// Size is the content length in bytes.
	Size int64
	// ContentHash is the hex BLAKE3 digest of the content.
	ContentHash string
	// URI is the content-addressed location of the upload.
	URI string
}

// Session is the domain contract the navigation layer consumes. All
// methods honor ctx cancellation. Implementations must be safe for
// concurrent use.
type Session interface {
	// ResolveRoom looks up a room by ID. Unknown rooms fail with a
	// *Error carrying CodeNotFound.
	ResolveRoom(ctx context.Context, roomID string) (RoomInfo, error)

	// OpenTimeline opens the heavy per-room handle. At most one
	// timeline per room may be live at a time: opening a second one
	// before the first is closed fails with CodeConflict. The caller
	// owns the returned handle and must Close it.
	OpenTimeline(ctx context.Context, roomID string) (*Timeline, error)

	// UploadMedia processes an attached file and returns its
	// content-addressed description.
	UploadMedia(ctx context.Context, name string, data []byte) (Upload, error)

	// Close releases the session. Idempotent.
	Close() error
}

// Timeline is the exclusive per-room handle. The navigation
// coordinator holds exactly one Timeline, for the currently presented
// room, and closes it on every transition away from that room.
type Timeline struct {
	roomID string

	mu      sync.Mutex
	items   chan TimelineItem
	closed  chan struct{}
	done    bool
	onClose func()
}

func newTimeline(roomID string, buffer int, onClose func()) *Timeline {
	return &Timeline{
		roomID:  roomID,
		items:   make(chan TimelineItem, buffer),
		closed:  make(chan struct{}),
		onClose: onClose,
	}
}

// RoomID returns the room this handle belongs to.
func (timeline *Timeline) RoomID() string { return timeline.roomID }

// Items streams timeline entries. The channel is closed when the
// handle is closed.
func (timeline *Timeline) Items() <-chan TimelineItem { return timeline.items }

// Closed is closed once the handle has been released.
func (timeline *Timeline) Closed() <-chan struct{} { return timeline.closed }

// Close releases the handle. Idempotent.
func (timeline *Timeline) Close() error {
	timeline.mu.Lock()
	if timeline.done {
		timeline.mu.Unlock()
		return nil
	}
	timeline.done = true
	close(timeline.closed)
	close(timeline.items)
	onClose := timeline.onClose
	timeline.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return nil
}

// deliver pushes an item into the stream, dropping it if the handle
// is closed or the consumer has fallen a full buffer behind.
func (timeline *Timeline) deliver(item TimelineItem) {
	timeline.mu.Lock()
	defer timeline.mu.Unlock()
	if timeline.done {
		return
	}
	select {
	case timeline.items <- item:
	default:
	}
}
