// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomflow is the navigation flow for a chat client's room
// scope: a root screen, one room detail screen, and content surfaces
// (media viewer, file uploader, reaction picker, report form)
// presented over the room.
//
// The package wires a flow.Coordinator with the room-domain route
// table and effect handlers. Presentation goes through a Presenter
// the caller supplies; room data comes from a session.Session. The
// coordinator exclusively owns the open timeline handle for the
// currently presented room and releases it on every transition away.
//
// Requests that can race (opening room B while room A is still
// resolving, or a surface's own dismiss callback arriving after an
// explicit dismissal already ran) are serialized by the underlying
// event loop and de-duplicated by guards that compare the event's
// identifying payload against the current state.
package roomflow
