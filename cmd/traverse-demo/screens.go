// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/traverse-foundation/traverse/roomflow"
	"github.com/traverse-foundation/traverse/session"
	"github.com/traverse-foundation/traverse/tui"
)

// timelineItemMsg carries one timeline item into the update loop.
type timelineItemMsg struct {
	roomID string
	item   session.TimelineItem
}

// demoScreens builds the demo's screens. The flow coordinator is set
// after construction; screen factories and the coordinator reference
// each other.
type demoScreens struct {
	sender tui.Sender
	flow   *roomflow.Coordinator
}

// RoomScreen shows a live timeline and offers keys that open content
// surfaces. A goroutine pumps timeline items into the program; it
// exits when the coordinator closes the timeline handle.
func (screens *demoScreens) RoomScreen(info session.RoomInfo, timeline *session.Timeline) roomflow.Screen {
	screen := &roomScreen{screens: screens, info: info}
	go func() {
		for item := range timeline.Items() {
			screens.sender.Send(timelineItemMsg{roomID: info.ID, item: item})
		}
	}()
	return screen
}

// ContentScreen shows a content surface's payload.
func (screens *demoScreens) ContentScreen(content roomflow.Content) roomflow.Screen {
	return &contentScreen{content: content}
}

// roomScreen is the detail view for one room.
type roomScreen struct {
	screens *demoScreens
	info    session.RoomInfo
	items   []session.TimelineItem
}

func (screen *roomScreen) ScreenID() string { return "room:" + screen.info.ID }

// Update implements tui.Interactive.
func (screen *roomScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timelineItemMsg:
		if msg.roomID == screen.info.ID {
			screen.items = append(screen.items, msg.item)
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "m":
			screen.screens.flow.OpenContent(roomflow.MediaViewer, roomflow.ContentPayload{
				ID:    screen.info.ID + "/media",
				Title: "Latest image in " + screen.info.Name,
				URI:   "content://demo-media",
			}, true)
		case "r":
			screen.screens.flow.OpenContent(roomflow.ReactionPicker, roomflow.ContentPayload{
				ID:    screen.info.ID + "/react",
				Title: "React to the last message",
			}, true)
		case "u":
			screen.screens.flow.OpenContent(roomflow.FileUploader, roomflow.ContentPayload{
				ID:   screen.info.ID + "/upload",
				Name: "notes.txt",
				Data: []byte("demo upload from " + screen.info.ID),
			}, true)
		}
	}
	return nil
}

// View implements tui.Viewer.
func (screen *roomScreen) View(width, height int) string {
	var lines []string
	title := screen.info.Name
	if screen.info.Topic != "" {
		title += " · " + screen.info.Topic
	}
	lines = append(lines, ansi.Truncate(title, width, "…"), "")

	// Show the newest items that fit.
	maxItems := height - 3
	if maxItems < 0 {
		maxItems = 0
	}
	items := screen.items
	if len(items) > maxItems {
		items = items[len(items)-maxItems:]
	}
	for _, item := range items {
		line := fmt.Sprintf("%s  %s: %s", item.At.Format("15:04:05"), item.Sender, item.Body)
		lines = append(lines, ansi.Truncate(line, width, "…"))
	}
	if len(screen.items) == 0 {
		lines = append(lines, "(no messages yet)")
	}

	lines = append(lines, "", "m media · r react · u upload · esc back")
	return strings.Join(lines, "\n")
}

// contentScreen renders a content payload. It handles no input; the
// host's escape binding dismisses it.
type contentScreen struct {
	content roomflow.Content
}

func (screen *contentScreen) ScreenID() string {
	return fmt.Sprintf("%s:%s", screen.content.View, screen.content.Payload.ID)
}

// View implements tui.Viewer.
func (screen *contentScreen) View(width, height int) string {
	payload := screen.content.Payload
	var lines []string
	switch screen.content.View {
	case roomflow.MediaViewer:
		lines = append(lines, payload.Title, "", "uri: "+payload.URI)
	case roomflow.FileUploader:
		lines = append(lines, "uploading "+payload.Name+"…")
	case roomflow.ReactionPicker:
		lines = append(lines, payload.Title, "", "👍  🎉  ❤️  🚀")
	case roomflow.ReportContent:
		lines = append(lines, "report: "+payload.Title)
	default:
		lines = append(lines, payload.Title)
	}
	lines = append(lines, "", "esc to dismiss")

	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}
