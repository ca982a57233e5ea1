// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/traverse-foundation/traverse/session"
)

// EscapeHandler lets a screen consume escape before the host treats
// it as a close.
type EscapeHandler interface {
	HandleEscape() bool
}

// RoomList is the demo's base screen: a filterable room picker.
// Typing / starts fzf-style fuzzy filtering across room names and
// IDs; enter hands the selection to the flow.
type RoomList struct {
	theme     Theme
	keys      KeyMap
	rooms     []session.RoomInfo
	visible   []roomMatch
	cursor    int
	filter    string
	filtering bool
	slab      *util.Slab
	onSelect  func(session.RoomInfo)
}

// roomMatch is one filtered row: the room index and its fuzzy score.
type roomMatch struct {
	index int
	score int
}

// NewRoomList builds the picker. onSelect fires on enter with the
// highlighted room.
func NewRoomList(theme Theme, rooms []session.RoomInfo, onSelect func(session.RoomInfo)) *RoomList {
	list := &RoomList{
		theme:    theme,
		keys:     DefaultKeyMap,
		rooms:    rooms,
		slab:     NewSlab(),
		onSelect: onSelect,
	}
	list.refilter()
	return list
}

// ScreenID implements roomflow.Screen.
func (list *RoomList) ScreenID() string { return "rooms" }

// HandleEscape clears an active filter instead of closing the host.
func (list *RoomList) HandleEscape() bool {
	if !list.filtering && list.filter == "" {
		return false
	}
	list.filter = ""
	list.filtering = false
	list.refilter()
	return true
}

// Update implements Interactive.
func (list *RoomList) Update(msg tea.Msg) tea.Cmd {
	pressed, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if list.filtering {
		switch {
		case key.Matches(pressed, list.keys.Select):
			list.filtering = false
			list.selectCurrent()
		case pressed.Type == tea.KeyBackspace:
			if runes := []rune(list.filter); len(runes) > 0 {
				list.filter = string(runes[:len(runes)-1])
				list.refilter()
			}
		case pressed.Type == tea.KeyUp:
			list.moveCursor("up")
		case pressed.Type == tea.KeyDown:
			list.moveCursor("down")
		case pressed.Type == tea.KeyRunes:
			list.filter += string(pressed.Runes)
			list.refilter()
		}
		return nil
	}

	switch {
	case key.Matches(pressed, list.keys.FilterActivate):
		list.filtering = true
	case key.Matches(pressed, list.keys.Up):
		list.moveCursor("up")
	case key.Matches(pressed, list.keys.Down):
		list.moveCursor("down")
	case key.Matches(pressed, list.keys.Select):
		list.selectCurrent()
	}
	return nil
}

func (list *RoomList) moveCursor(direction string) {
	switch direction {
	case "up":
		if list.cursor > 0 {
			list.cursor--
		}
	case "down":
		if list.cursor < len(list.visible)-1 {
			list.cursor++
		}
	}
}

func (list *RoomList) selectCurrent() {
	if list.cursor < len(list.visible) && list.onSelect != nil {
		list.onSelect(list.rooms[list.visible[list.cursor].index])
	}
}

// refilter recomputes the visible rows for the current filter text.
// Matches rank by fzf score; ties keep the room order.
func (list *RoomList) refilter() {
	pattern := []rune(strings.ToLower(list.filter))

	list.visible = list.visible[:0]
	for index, room := range list.rooms {
		haystack := room.Name + " " + room.ID
		result := FuzzyMatch(haystack, pattern, list.slab)
		if !result.Matched {
			continue
		}
		list.visible = append(list.visible, roomMatch{index: index, score: result.Score})
	}
	sort.SliceStable(list.visible, func(i, j int) bool {
		return list.visible[i].score > list.visible[j].score
	})

	if list.cursor >= len(list.visible) {
		list.cursor = len(list.visible) - 1
	}
	if list.cursor < 0 {
		list.cursor = 0
	}
}

// View implements Viewer.
func (list *RoomList) View(width, height int) string {
	var lines []string

	header := "rooms"
	if list.filtering || list.filter != "" {
		header = "/" + list.filter
	}
	lines = append(lines, lipgloss.NewStyle().
		Foreground(list.theme.MatchForeground).
		Render(ansi.Truncate(header, width, "…")))

	rowStyle := lipgloss.NewStyle().Foreground(list.theme.NormalText)
	faint := lipgloss.NewStyle().Foreground(list.theme.FaintText)
	selected := lipgloss.NewStyle().
		Background(list.theme.SelectedBackground).
		Foreground(list.theme.SelectedForeground)

	maxRows := height - 1
	for position, match := range list.visible {
		if position >= maxRows {
			break
		}
		room := list.rooms[match.index]
		label := room.Name
		if label == "" {
			label = room.ID
		}
		row := fmt.Sprintf("%s %s", label, faint.Render(room.ID))
		row = ansi.Truncate(row, width, "…")
		if position == list.cursor {
			row = selected.Render(row)
		} else {
			row = rowStyle.Render(row)
		}
		lines = append(lines, row)
	}

	if len(list.visible) == 0 {
		lines = append(lines, faint.Render("no rooms match"))
	}

	return strings.Join(lines, "\n")
}
