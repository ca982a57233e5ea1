// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for Traverse terminal hosts. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	BreadcrumbForeground lipgloss.Color
	BorderColor          lipgloss.Color
	HelpText             lipgloss.Color

	// Overlay surfaces.
	OverlayBackground lipgloss.Color
	OverlayForeground lipgloss.Color

	// Filter match highlighting.
	MatchForeground lipgloss.Color

	// Error notices (failed room resolutions, failed uploads).
	ErrorForeground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	BreadcrumbForeground: lipgloss.Color("255"),
	BorderColor:          lipgloss.Color("240"),
	HelpText:             lipgloss.Color("241"),

	OverlayBackground: lipgloss.Color("237"),
	OverlayForeground: lipgloss.Color("252"),

	MatchForeground: lipgloss.Color("220"),

	ErrorForeground: lipgloss.Color("196"),
}
