// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

// Package observe records navigation transitions. The flow coordinator
// reports every successful transition to a TraceSink; this package
// provides the sinks: an in-memory ring for live inspection, an
// append-only compressed trace file for post-hoc analysis, and a slog
// forwarder for ambient structured logging.
//
// Observability is a collaborator of the navigation core, not part of
// it: sinks receive routes after the transition has happened and can
// never influence it.
package observe
