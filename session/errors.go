// Copyright 2026 The Traverse Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
)

// Error is a structured failure from the domain session. Callers use
// errors.As to branch on the code:
//
//	var sessionErr *session.Error
//	if errors.As(err, &sessionErr) && sessionErr.Code == session.CodeNotFound { ... }
type Error struct {
	// Code is the machine-readable failure class.
	Code string
	// Message is the human-readable description.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("session: %s: %s", e.Code, e.Message)
}

// Session error codes.
const (
	// CodeNotFound means the requested room or content does not
	// exist (or the user cannot see it, which is indistinguishable).
	CodeNotFound = "NOT_FOUND"
	// CodeForbidden means the operation is known to be disallowed.
	CodeForbidden = "FORBIDDEN"
	// CodeConflict means an exclusive resource is already held, such
	// as a second timeline opened for a room whose handle is live.
	CodeConflict = "CONFLICT"
	// CodeLimitExceeded means the server rate-limited the request.
	CodeLimitExceeded = "LIMIT_EXCEEDED"
	// CodeClosed means the session itself has been closed.
	CodeClosed = "CLOSED"
)

// IsError checks whether err is a *Error with the given code.
func IsError(err error, code string) bool {
	var sessionErr *Error
	if errors.As(err, &sessionErr) {
		return sessionErr.Code == code
	}
	return false
}

// NotFound builds a CodeNotFound error for the given room ID.
func NotFound(roomID string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("room %q does not exist", roomID)}
}
