// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/traverse-foundation/traverse/lib/testutil"
)

func TestResolveRoom(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!a", Name: "Alpha"})

	room, err := memory.ResolveRoom(context.Background(), "!a")
	if err != nil {
		t.Fatalf("ResolveRoom: %v", err)
	}
	if room.Name != "Alpha" {
		t.Errorf("Name = %q, want Alpha", room.Name)
	}
}

func TestResolveRoomNotFound(t *testing.T) {
	t.Parallel()
	memory := NewMemory()

	_, err := memory.ResolveRoom(context.Background(), "!missing")
	if !IsError(err, CodeNotFound) {
		t.Errorf("ResolveRoom unknown room: err = %v, want CodeNotFound", err)
	}
}

func TestResolveRoomInjectedFailure(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!a"})
	memory.FailResolve("!a", &Error{Code: CodeForbidden, Message: "banned"})

	_, err := memory.ResolveRoom(context.Background(), "!a")
	if !IsError(err, CodeForbidden) {
		t.Errorf("err = %v, want CodeForbidden", err)
	}

	memory.FailResolve("!a", nil)
	if _, err := memory.ResolveRoom(context.Background(), "!a"); err != nil {
		t.Errorf("after clearing failure: %v", err)
	}
}

func TestGateResolveBlocksUntilReleased(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!slow"})
	release := memory.GateResolve("!slow")

	resolved := make(chan error, 1)
	go func() {
		_, err := memory.ResolveRoom(context.Background(), "!slow")
		resolved <- err
	}()

	testutil.RequireNoReceive(t, resolved, 50*time.Millisecond, "resolution completed before release")
	release()
	if err := testutil.RequireReceive(t, resolved, 5*time.Second, "gated resolution"); err != nil {
		t.Errorf("gated ResolveRoom: %v", err)
	}
}

func TestGateResolveHonorsContext(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!slow"})
	memory.GateResolve("!slow")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := memory.ResolveRoom(ctx, "!slow")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTimelineExclusivity(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!a"})
	ctx := context.Background()

	first, err := memory.OpenTimeline(ctx, "!a")
	if err != nil {
		t.Fatalf("OpenTimeline: %v", err)
	}

	if _, err := memory.OpenTimeline(ctx, "!a"); !IsError(err, CodeConflict) {
		t.Errorf("second OpenTimeline err = %v, want CodeConflict", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("second Close not idempotent: %v", err)
	}

	second, err := memory.OpenTimeline(ctx, "!a")
	if err != nil {
		t.Fatalf("OpenTimeline after close: %v", err)
	}
	_ = second.Close()
}

func TestTimelineDelivery(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!a"})

	timeline, err := memory.OpenTimeline(context.Background(), "!a")
	if err != nil {
		t.Fatalf("OpenTimeline: %v", err)
	}
	defer timeline.Close()

	memory.Deliver("!a", TimelineItem{ID: "$1", Body: "hello"})
	item := testutil.RequireReceive(t, timeline.Items(), 5*time.Second, "timeline item")
	if item.Body != "hello" {
		t.Errorf("Body = %q, want hello", item.Body)
	}

	// Delivery after close is a silent drop, not a panic.
	_ = timeline.Close()
	memory.Deliver("!a", TimelineItem{ID: "$2"})
}

func TestUploadMediaContentAddressed(t *testing.T) {
	t.Parallel()
	memory := NewMemory()
	ctx := context.Background()

	first, err := memory.UploadMedia(ctx, "photo.jpg", []byte("image bytes"))
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	second, err := memory.UploadMedia(ctx, "copy.jpg", []byte("image bytes"))
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}

	if first.ContentHash != second.ContentHash || first.URI != second.URI {
		t.Errorf("identical bytes produced different addresses: %q vs %q", first.URI, second.URI)
	}
	if !strings.HasPrefix(first.URI, "content://") {
		t.Errorf("URI = %q, want content:// prefix", first.URI)
	}
	if first.Size != int64(len("image bytes")) {
		t.Errorf("Size = %d, want %d", first.Size, len("image bytes"))
	}
}

func TestCloseReleasesTimelines(t *testing.T) {
	t.Parallel()
	memory := NewMemory(RoomInfo{ID: "!a"})

	timeline, err := memory.OpenTimeline(context.Background(), "!a")
	if err != nil {
		t.Fatalf("OpenTimeline: %v", err)
	}

	if err := memory.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	testutil.RequireClosed(t, timeline.Closed(), 5*time.Second, "timeline released on session close")

	if _, err := memory.ResolveRoom(context.Background(), "!a"); !IsError(err, CodeClosed) {
		t.Errorf("ResolveRoom after Close: err = %v, want CodeClosed", err)
	}
}
