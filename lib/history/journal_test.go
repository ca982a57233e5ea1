// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/traverse-foundation/traverse/flow"
	"github.com/traverse-foundation/traverse/lib/clock"
	"github.com/traverse-foundation/traverse/lib/history"
	"github.com/traverse-foundation/traverse/roomflow"
)

func openTestJournal(t *testing.T, clk clock.Clock) *history.Journal {
	t.Helper()
	journal, err := history.Open(history.Config{
		Path:  filepath.Join(t.TempDir(), "history.db"),
		Clock: clk,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := journal.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return journal
}

func TestRecordAndRecent(t *testing.T) {
	journal := openTestJournal(t, nil)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	if err := journal.RecordVisit(ctx, "alpha", "Alpha", base); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if err := journal.RecordVisit(ctx, "beta", "Beta", base.Add(time.Minute)); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if err := journal.RecordVisit(ctx, "alpha", "Alpha Renamed", base.Add(2*time.Minute)); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}

	visits, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("got %d visits, want 2: %+v", len(visits), visits)
	}
	// alpha was visited most recently and twice, with the newer name.
	if visits[0].RoomID != "alpha" || visits[0].VisitCount != 2 || visits[0].Name != "Alpha Renamed" {
		t.Fatalf("visits[0] = %+v", visits[0])
	}
	if !visits[0].LastVisited.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("LastVisited = %v, want %v", visits[0].LastVisited, base.Add(2*time.Minute))
	}
	if visits[1].RoomID != "beta" || visits[1].VisitCount != 1 {
		t.Fatalf("visits[1] = %+v", visits[1])
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	journal := openTestJournal(t, nil)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i, room := range []string{"a", "b", "c"} {
		if err := journal.RecordVisit(ctx, room, "", base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	visits, err := journal.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(visits) != 2 || visits[0].RoomID != "c" || visits[1].RoomID != "b" {
		t.Fatalf("visits = %+v", visits)
	}

	none, err := journal.Recent(ctx, 0)
	if err != nil || none != nil {
		t.Fatalf("Recent(0) = %v, %v", none, err)
	}
}

func TestPrune(t *testing.T) {
	journal := openTestJournal(t, nil)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i, room := range []string{"old", "older", "fresh"} {
		at := base.Add(time.Duration(i) * time.Hour)
		if err := journal.RecordVisit(ctx, room, "", at); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	pruned, err := journal.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("pruned = %d, want 2", pruned)
	}

	visits, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(visits) != 1 || visits[0].RoomID != "fresh" {
		t.Fatalf("visits = %+v", visits)
	}
}

func TestFollowJournalsPresentedRooms(t *testing.T) {
	fakeClock := clock.NewFake()
	journal := openTestJournal(t, fakeClock)

	actions := make(chan flow.Action, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		journal.Follow(context.Background(), actions)
	}()

	actions <- roomflow.RoomPresented{ID: "alpha", Name: "Alpha"}
	// Non-visit actions pass through without journaling.
	actions <- roomflow.ReturnedToRoot{}
	actions <- roomflow.RoomPresented{ID: "beta", Name: "Beta"}
	close(actions)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return after the stream closed")
	}

	visits, err := journal.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("got %d visits, want 2: %+v", len(visits), visits)
	}
	for _, visit := range visits {
		if visit.RoomID != "alpha" && visit.RoomID != "beta" {
			t.Fatalf("unexpected visit %+v", visit)
		}
	}
}
