// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
)

// timelineBuffer is the per-handle item buffer. Slow consumers drop
// items past this depth rather than stalling the producer.
const timelineBuffer = 128

// Memory is an in-memory Session over fixture rooms. Tests drive its
// failure and timing behavior directly: GateResolve holds a room's
// resolution open until released (for staleness races), and
// FailResolve injects a typed error.
//
// Memory enforces the one-live-timeline-per-room rule so tests catch
// handle leaks in the navigation layer.
type Memory struct {
	mu       sync.Mutex
	rooms    map[string]RoomInfo
	failures map[string]*Error
	gates    map[string]chan struct{}
	open     map[string]*Timeline
	closed   bool
}

var _ Session = (*Memory)(nil)

// NewMemory creates a Memory session seeded with the given rooms.
func NewMemory(rooms ...RoomInfo) *Memory {
	memory := &Memory{
		rooms:    make(map[string]RoomInfo, len(rooms)),
		failures: make(map[string]*Error),
		gates:    make(map[string]chan struct{}),
		open:     make(map[string]*Timeline),
	}
	for _, room := range rooms {
		memory.rooms[room.ID] = room
	}
	return memory
}

// AddRoom makes a room resolvable.
func (memory *Memory) AddRoom(room RoomInfo) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	memory.rooms[room.ID] = room
}

// Rooms lists the resolvable rooms, sorted by name then ID.
func (memory *Memory) Rooms() []RoomInfo {
	memory.mu.Lock()
	defer memory.mu.Unlock()

	rooms := make([]RoomInfo, 0, len(memory.rooms))
	for _, room := range memory.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

// FailResolve makes every ResolveRoom for roomID return err until the
// entry is cleared with a nil err.
func (memory *Memory) FailResolve(roomID string, err *Error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if err == nil {
		delete(memory.failures, roomID)
		return
	}
	memory.failures[roomID] = err
}

// GateResolve holds future ResolveRoom calls for roomID until the
// returned release function is called. Used to simulate slow
// resolution for ordering and staleness tests.
func (memory *Memory) GateResolve(roomID string) (release func()) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	gate := make(chan struct{})
	memory.gates[roomID] = gate
	return func() { close(gate) }
}

// ResolveRoom implements Session.
func (memory *Memory) ResolveRoom(ctx context.Context, roomID string) (RoomInfo, error) {
	memory.mu.Lock()
	if memory.closed {
		memory.mu.Unlock()
		return RoomInfo{}, &Error{Code: CodeClosed, Message: "session closed"}
	}
	gate := memory.gates[roomID]
	memory.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return RoomInfo{}, ctx.Err()
		}
	}

	memory.mu.Lock()
	defer memory.mu.Unlock()
	if failure := memory.failures[roomID]; failure != nil {
		return RoomInfo{}, failure
	}
	room, ok := memory.rooms[roomID]
	if !ok {
		return RoomInfo{}, NotFound(roomID)
	}
	return room, nil
}

// OpenTimeline implements Session. It fails with CodeConflict while a
// previously opened handle for the same room is still live.
func (memory *Memory) OpenTimeline(ctx context.Context, roomID string) (*Timeline, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()

	if memory.closed {
		return nil, &Error{Code: CodeClosed, Message: "session closed"}
	}
	if _, ok := memory.rooms[roomID]; !ok {
		return nil, NotFound(roomID)
	}
	if memory.open[roomID] != nil {
		return nil, &Error{
			Code:    CodeConflict,
			Message: fmt.Sprintf("timeline for room %q is already open", roomID),
		}
	}

	timeline := newTimeline(roomID, timelineBuffer, func() {
		memory.mu.Lock()
		defer memory.mu.Unlock()
		delete(memory.open, roomID)
	})
	memory.open[roomID] = timeline
	return timeline, nil
}

// Deliver injects a timeline item for roomID, if its timeline is open.
// Items for rooms without a live handle are dropped, like events for
// rooms the user is not looking at.
func (memory *Memory) Deliver(roomID string, item TimelineItem) {
	memory.mu.Lock()
	timeline := memory.open[roomID]
	memory.mu.Unlock()
	if timeline != nil {
		timeline.deliver(item)
	}
}

// TimelineOpen reports whether a live handle exists for roomID.
func (memory *Memory) TimelineOpen(roomID string) bool {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	return memory.open[roomID] != nil
}

// UploadMedia implements Session. The upload is content-addressed by
// its BLAKE3 hash; re-uploading identical bytes yields the same URI.
func (memory *Memory) UploadMedia(ctx context.Context, name string, data []byte) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	memory.mu.Lock()
	closed := memory.closed
	memory.mu.Unlock()
	if closed {
		return Upload{}, &Error{Code: CodeClosed, Message: "session closed"}
	}

	digest := blake3.Sum256(data)
	hash := hex.EncodeToString(digest[:])
	return Upload{
		Name:        name,
		Size:        int64(len(data)),
		ContentHash: hash,
		URI:         "content://" + hash,
	}, nil
}

// Close implements Session: it closes every live timeline and rejects
// further calls. Idempotent.
func (memory *Memory) Close() error {
	memory.mu.Lock()
	if memory.closed {
		memory.mu.Unlock()
		return nil
	}
	memory.closed = true
	handles := make([]*Timeline, 0, len(memory.open))
	for _, timeline := range memory.open {
		handles = append(handles, timeline)
	}
	memory.mu.Unlock()

	for _, timeline := range handles {
		_ = timeline.Close()
	}
	return nil
}
