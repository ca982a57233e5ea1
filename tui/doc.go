// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides a terminal host for Traverse navigation flows,
// built on bubbletea (Elm architecture). The Host implements
// roomflow.Presenter: presenter commands arrive in the update loop as
// messages, screens stack inside the model, and one overlay slot
// floats above the stack. Completion callbacks fire exactly once per
// presented surface, whether the surface leaves through a coordinator
// command or a user keystroke.
//
// The package also carries the shared visual pieces the demo screens
// use: the color theme, width-safe rendering helpers, and an
// fzf-backed fuzzy matcher for list filtering.
package tui
