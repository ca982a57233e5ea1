// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// traverse-demo is an interactive terminal walkthrough of the room
// navigation flow: an in-memory session, the bubbletea host as the
// presenter, transition tracing to a ring and an optional file, and
// a SQLite visit journal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/traverse-foundation/traverse/flow"
	"github.com/traverse-foundation/traverse/lib/history"
	"github.com/traverse-foundation/traverse/observe"
	"github.com/traverse-foundation/traverse/roomflow"
	"github.com/traverse-foundation/traverse/session"
	"github.com/traverse-foundation/traverse/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		tracePath   string
		compression string
		historyPath string
		logPath     string
	)
	flags := pflag.NewFlagSet("traverse-demo", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&tracePath, "trace", "", "record transitions to this trace file")
	flags.StringVar(&compression, "compression", "zstd", "trace compression: none, lz4, or zstd")
	flags.StringVar(&historyPath, "history", "", "SQLite visit journal (default: none)")
	flags.StringVar(&logPath, "log-output", "", "write JSON log records to this file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	rooms := sampleRooms()
	if configPath != "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if len(cfg.Rooms) > 0 {
			rooms = cfg.roomInfos()
		}
		if !flags.Changed("trace") && cfg.Trace != "" {
			tracePath = cfg.Trace
		}
		if !flags.Changed("compression") && cfg.Compression != "" {
			compression = cfg.Compression
		}
		if !flags.Changed("history") && cfg.History != "" {
			historyPath = cfg.History
		}
		if !flags.Changed("log-output") && cfg.LogOutput != "" {
			logPath = cfg.LogOutput
		}
	}

	logger := slog.New(slog.DiscardHandler)
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log output: %w", err)
		}
		defer logFile.Close()
		logger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	memory := session.NewMemory(rooms...)
	defer memory.Close()

	// Trace fan-out: an in-memory ring always, a framed file when
	// requested, transition logs when logging is on.
	ring := observe.NewRing(observe.DefaultRingCapacity)
	recorders := []observe.Recorder{ring, observe.NewSlogSink(logger)}
	if tracePath != "" {
		tag, err := compressionTag(compression)
		if err != nil {
			return err
		}
		traceFile, err := os.Create(tracePath)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer traceFile.Close()
		traceWriter, err := observe.NewWriter(traceFile, tag)
		if err != nil {
			return err
		}
		defer traceWriter.Close()
		recorders = append(recorders, traceWriter)
	}

	screens := &demoScreens{}
	coordinator, startProgram, err := buildHost(memory, screens, logger, observe.NewSink(recorders...))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coordinator.Start(ctx)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = coordinator.Close(closeCtx)
	}()

	// Visit journal, fed from the action stream.
	var journal *history.Journal
	if historyPath != "" {
		journal, err = history.Open(history.Config{Path: historyPath, Logger: logger})
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	return startProgram(ctx, coordinator, journal, logger)
}

// buildHost wires the bubbletea program, the presenter, and the flow
// coordinator together. The program cannot run before the coordinator
// exists (screens submit events), and the coordinator needs the
// presenter, so construction happens in two steps and the returned
// closure finishes the job.
func buildHost(
	memory *session.Memory,
	screens *demoScreens,
	logger *slog.Logger,
	trace flow.TraceSink,
) (*roomflow.Coordinator, func(context.Context, *roomflow.Coordinator, *history.Journal, *slog.Logger) error, error) {
	var program *tea.Program

	// The room list drives the flow; the flow pointer is filled in
	// below, before the program starts delivering key events.
	var coordinator *roomflow.Coordinator
	roomList := tui.NewRoomList(tui.DefaultTheme, memory.Rooms(), func(room session.RoomInfo) {
		coordinator.OpenRoom(room.ID, true)
	})

	model := tui.NewModel(tui.DefaultTheme, roomList)
	program = tea.NewProgram(model, tea.WithAltScreen())
	screens.sender = program

	host := tui.NewHost(program)
	var err error
	coordinator, err = roomflow.New(roomflow.Config{
		Session:   memory,
		Presenter: host,
		Screens:   screens,
		Logger:    logger,
		Trace:     trace,
	})
	if err != nil {
		return nil, nil, err
	}
	screens.flow = coordinator

	start := func(ctx context.Context, coordinator *roomflow.Coordinator, journal *history.Journal, logger *slog.Logger) error {
		go watchActions(ctx, coordinator, journal, program, logger)
		go deliverChatter(ctx, memory)

		_, err := program.Run()
		return err
	}
	return coordinator, start, nil
}

// watchActions consumes the flow's action stream: failures surface as
// notices, presented rooms go to the visit journal.
func watchActions(
	ctx context.Context,
	coordinator *roomflow.Coordinator,
	journal *history.Journal,
	program *tea.Program,
	logger *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case action, ok := <-coordinator.Actions():
			if !ok {
				return
			}
			switch action := action.(type) {
			case roomflow.RoomPresented:
				if journal != nil {
					if err := journal.RecordVisit(ctx, action.ID, action.Name, time.Now()); err != nil {
						logger.Warn("recording visit failed", "room", action.ID, "error", err)
					}
				}
				program.Send(tui.NoticeMsg{Text: "entered " + action.Name})
			case roomflow.RoomFailed:
				program.Send(tui.NoticeMsg{
					Text:    fmt.Sprintf("room %s unavailable: %v", action.ID, action.Reason),
					IsError: true,
				})
			case roomflow.MediaUploaded:
				program.Send(tui.NoticeMsg{Text: "uploaded " + action.Upload.Name + " to " + action.Upload.URI})
			case roomflow.UploadFailed:
				program.Send(tui.NoticeMsg{
					Text:    fmt.Sprintf("upload %s failed: %v", action.Name, action.Reason),
					IsError: true,
				})
			}
		}
	}
}

// deliverChatter feeds demo messages into whichever timelines are
// open, so room screens have something to show.
func deliverChatter(ctx context.Context, memory *session.Memory) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	senders := []string{"ada", "grace", "linus"}
	count := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			count++
			for _, room := range memory.Rooms() {
				memory.Deliver(room.ID, session.TimelineItem{
					ID:     fmt.Sprintf("msg-%d", count),
					Sender: senders[count%len(senders)],
					Body:   fmt.Sprintf("message %d in %s", count, room.Name),
					At:     now,
				})
			}
		}
	}
}

func compressionTag(name string) (observe.CompressionTag, error) {
	switch name {
	case "none":
		return observe.CompressionNone, nil
	case "lz4":
		return observe.CompressionLZ4, nil
	case "zstd":
		return observe.CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, or zstd)", name)
	}
}

func sampleRooms() []session.RoomInfo {
	return []session.RoomInfo{
		{ID: "!general", Name: "General", Topic: "Anything goes"},
		{ID: "!ops", Name: "Operations", Topic: "Pager duty and runbooks"},
		{ID: "!random", Name: "Random", Topic: "Off topic"},
		{ID: "!design", Name: "Design", Topic: "Mockups and reviews"},
	}
}
