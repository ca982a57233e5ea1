// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/traverse-foundation/traverse/roomflow"
)

// Sender delivers messages into a running bubbletea program.
// *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Interactive is implemented by screens that handle input. The host
// routes key and window messages to the frontmost interactive
// surface.
type Interactive interface {
	Update(msg tea.Msg) tea.Cmd
}

// Viewer is implemented by screens that render themselves. Screens
// without it render as their ScreenID.
type Viewer interface {
	View(width, height int) string
}

// Host implements roomflow.Presenter by forwarding presenter commands
// into the update loop as messages. Safe to call from any goroutine
// once the program runs.
type Host struct {
	sender Sender
}

// NewHost wraps a running program's Send side.
func NewHost(sender Sender) *Host {
	return &Host{sender: sender}
}

func (host *Host) Push(screen roomflow.Screen, onPop func()) {
	host.sender.Send(pushMsg{screen: screen, done: onPop})
}

func (host *Host) PresentOverlay(screen roomflow.Screen, onDismiss func()) {
	host.sender.Send(overlayMsg{screen: screen, done: onDismiss})
}

func (host *Host) Pop() {
	host.sender.Send(popMsg{})
}

func (host *Host) DismissOverlay() {
	host.sender.Send(dismissOverlayMsg{})
}

// Presenter command messages.
type pushMsg struct {
	screen roomflow.Screen
	done   func()
}

type overlayMsg struct {
	screen roomflow.Screen
	done   func()
}

type popMsg struct{}

type dismissOverlayMsg struct{}

// NoticeMsg shows a transient line in the status bar. The demo sends
// it for failed resolutions and uploads.
type NoticeMsg struct {
	Text    string
	IsError bool
}

// surface is one presented screen plus its completion callback. The
// fired flag makes the callback fire exactly once no matter how the
// surface leaves.
type surface struct {
	screen roomflow.Screen
	done   func()
	fired  bool
}

func (s *surface) fire() {
	if s.fired {
		return
	}
	s.fired = true
	if s.done != nil {
		s.done()
	}
}

// Model is the bubbletea model hosting a navigation flow: a base
// screen that is always present, a stack of pushed screens above it,
// and at most one overlay above everything.
type Model struct {
	theme   Theme
	base    roomflow.Screen
	stack   []*surface
	overlay *surface
	notice  string
	noticeError bool

	width  int
	height int
}

// NewModel builds a host model over a base screen (typically the
// room list). The base is never popped.
func NewModel(theme Theme, base roomflow.Screen) Model {
	return Model{theme: theme, base: base}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pushMsg:
		model.stack = append(model.stack, &surface{screen: msg.screen, done: msg.done})
		return model, nil

	case overlayMsg:
		// A replaced overlay completes; the flow decides what the
		// completion means.
		if model.overlay != nil {
			model.overlay.fire()
		}
		model.overlay = &surface{screen: msg.screen, done: msg.done}
		return model, nil

	case popMsg:
		if n := len(model.stack); n > 0 {
			top := model.stack[n-1]
			model.stack = model.stack[:n-1]
			top.fire()
		}
		return model, nil

	case dismissOverlayMsg:
		if model.overlay != nil {
			overlay := model.overlay
			model.overlay = nil
			overlay.fire()
		}
		return model, nil

	case NoticeMsg:
		model.notice = msg.Text
		model.noticeError = msg.IsError
		return model, nil

	case tea.WindowSizeMsg:
		model.width = msg.Width
		model.height = msg.Height
		model.forward(msg)
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(msg)
	}

	return model, model.forward(msg)
}

// handleKey routes a keystroke: host-level bindings first, then the
// frontmost interactive surface.
func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return model, tea.Quit

	case "esc":
		// The frontmost screen may consume escape (e.g. to clear an
		// active filter).
		if handler, ok := model.frontScreen().(EscapeHandler); ok && handler.HandleEscape() {
			return model, nil
		}
		// Otherwise escape closes the frontmost surface the way a
		// user gesture would: the callback reports the close to the
		// flow, no presenter command comes back.
		if model.overlay != nil {
			overlay := model.overlay
			model.overlay = nil
			overlay.fire()
			return model, nil
		}
		if n := len(model.stack); n > 0 {
			top := model.stack[n-1]
			model.stack = model.stack[:n-1]
			top.fire()
			return model, nil
		}
		return model, tea.Quit
	}

	return model, model.forward(msg)
}

// forward hands a message to the frontmost surface that handles
// input.
func (model Model) forward(msg tea.Msg) tea.Cmd {
	if model.overlay != nil {
		if interactive, ok := model.overlay.screen.(Interactive); ok {
			return interactive.Update(msg)
		}
		return nil
	}
	if n := len(model.stack); n > 0 {
		if interactive, ok := model.stack[n-1].screen.(Interactive); ok {
			return interactive.Update(msg)
		}
		return nil
	}
	if interactive, ok := model.base.(Interactive); ok {
		return interactive.Update(msg)
	}
	return nil
}

// View implements tea.Model.
func (model Model) View() string {
	if model.width == 0 {
		return ""
	}

	breadcrumb := model.renderBreadcrumb()
	status := model.renderStatus()
	contentHeight := model.height - lipgloss.Height(breadcrumb) - lipgloss.Height(status)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := model.renderSurface(model.topScreen(), contentHeight)
	if model.overlay != nil {
		content = model.renderOverlay(contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, breadcrumb, content, status)
}

// frontScreen is the screen with input focus: overlay, top of stack,
// or the base.
func (model Model) frontScreen() roomflow.Screen {
	if model.overlay != nil {
		return model.overlay.screen
	}
	return model.topScreen()
}

// topScreen is the screen the content area shows: top of stack, or
// the base.
func (model Model) topScreen() roomflow.Screen {
	if n := len(model.stack); n > 0 {
		return model.stack[n-1].screen
	}
	return model.base
}

// renderBreadcrumb draws the navigation chain across the top line.
func (model Model) renderBreadcrumb() string {
	parts := []string{model.base.ScreenID()}
	for _, s := range model.stack {
		parts = append(parts, s.screen.ScreenID())
	}
	if model.overlay != nil {
		parts = append(parts, model.overlay.screen.ScreenID())
	}
	line := strings.Join(parts, " > ")
	line = ansi.Truncate(line, model.width, "…")
	return lipgloss.NewStyle().
		Foreground(model.theme.BreadcrumbForeground).
		Width(model.width).
		Render(line)
}

// renderStatus draws the bottom help/notice line.
func (model Model) renderStatus() string {
	text := model.notice
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	if model.noticeError {
		style = style.Foreground(model.theme.ErrorForeground)
	}
	if text == "" {
		text = "esc close · ctrl+c quit"
	}
	return style.Width(model.width).Render(ansi.Truncate(text, model.width, "…"))
}

// renderSurface renders one screen into the content area.
func (model Model) renderSurface(screen roomflow.Screen, height int) string {
	var body string
	if viewer, ok := screen.(Viewer); ok {
		body = viewer.View(model.width, height)
	} else {
		body = screen.ScreenID()
	}
	return lipgloss.NewStyle().
		Width(model.width).
		Height(height).
		Render(body)
}

// renderOverlay draws the overlay as a centered bordered box over a
// blank content area. The stacked content underneath is hidden while
// the overlay is up; a navigation overlay owns the user's attention.
func (model Model) renderOverlay(height int) string {
	boxWidth := model.width * 2 / 3
	if boxWidth < 20 {
		boxWidth = model.width
	}
	boxHeight := height * 2 / 3
	if boxHeight < 3 {
		boxHeight = height
	}

	inner := model.renderSurfaceSized(model.overlay.screen, boxWidth-2, boxHeight-2)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Background(model.theme.OverlayBackground).
		Foreground(model.theme.OverlayForeground).
		Render(inner)

	return lipgloss.Place(model.width, height, lipgloss.Center, lipgloss.Center, box)
}

func (model Model) renderSurfaceSized(screen roomflow.Screen, width, height int) string {
	if viewer, ok := screen.(Viewer); ok {
		return viewer.View(width, height)
	}
	return ansi.Truncate(screen.ScreenID(), width, "…")
}
