// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package session defines the narrow domain contract the navigation
// layer depends on: resolve a room by ID, open its timeline handle,
// upload media. The protocol SDK that actually performs sync,
// encryption, and persistence sits behind this interface and is out
// of scope here; the package ships Memory, an in-memory
// implementation for tests, demos, and tooling.
package session
