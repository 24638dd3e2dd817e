// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package fault defines the failure kinds shared by jailwatch components.
// None of them is fatal: callers decide whether to log, warn or ignore.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a recoverable failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that carry no kind.
	KindUnknown Kind = iota
	// CommandNotFound means the external executable is not installed.
	CommandNotFound
	// CommandFailed means the command ran but exited non-zero.
	CommandFailed
	// CommandUnavailable means the command did not finish before its timeout.
	CommandUnavailable
	// ParseError means a single line or record could not be decoded.
	ParseError
	// LogUnavailable means the alert log is missing or unreadable.
	LogUnavailable
)

func (k Kind) String() string {
	switch k {
	case CommandNotFound:
		return "CommandNotFound"
	case CommandFailed:
		return "CommandFailed"
	case CommandUnavailable:
		return "CommandUnavailable"
	case ParseError:
		return "ParseError"
	case LogUnavailable:
		return "LogUnavailable"
	default:
		return "Unknown"
	}
}

// Error is a classified failure. Output holds whatever the external
// command printed before failing, so callers can still parse it.
type Error struct {
	Kind   Kind
	Op     string
	Output []byte
	Err    error
}

// New creates a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// OutputOf returns the captured command output attached to err, if any.
func OutputOf(err error) []byte {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Output
	}
	return nil
}
