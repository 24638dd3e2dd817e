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

// Package alerts loads the auto-block alert log and normalizes its
// heterogeneous records into Alerts.
package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/we-are-mono/jailwatch/fault"
)

// RawRecord is one decoded log record before normalization. Values are
// whatever encoding/json produced (numbers arrive as json.Number).
type RawRecord map[string]any

// Action is what the auto-block daemon did.
type Action string

const (
	ActionBlocked   Action = "BLOCKED"
	ActionUnblocked Action = "UNBLOCKED"
	ActionAlert     Action = "ALERT"
	ActionUnknown   Action = "UNKNOWN"
)

// ParseAction uppercases s and maps anything unrecognized to ActionUnknown.
func ParseAction(s string) Action {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionBlocked, ActionUnblocked, ActionAlert:
		return a
	default:
		return ActionUnknown
	}
}

// Alert is a normalized alert record.
type Alert struct {
	// Timestamp is the zero time when the record had no usable timestamp.
	Timestamp time.Time `json:"timestamp,omitempty"`
	// RawTimestamp is the record's timestamp value as text, kept for display
	// when it could not be parsed. Empty when the field was absent.
	RawTimestamp string `json:"raw_timestamp,omitempty"`
	// Address is empty when no address field was present.
	Address string `json:"address,omitempty"`
	Action  Action `json:"action"`
	Reason  string `json:"reason"`
}

// HasTimestamp reports whether the timestamp was parsed.
func (a Alert) HasTimestamp() bool {
	return !a.Timestamp.IsZero()
}

// HasAddress reports whether the record named an address.
func (a Alert) HasAddress() bool {
	return a.Address != ""
}

// Format names the encoding the alert log was decoded from.
type Format string

const (
	FormatEmpty  Format = "empty"
	FormatArray  Format = "array"
	FormatObject Format = "object"
	FormatScalar Format = "scalar"
	FormatNDJSON Format = "ndjson"
)

// LoadReport describes one read of the alert log.
type LoadReport struct {
	Records []RawRecord
	Format  Format
	// SkippedLines holds the 1-based numbers of NDJSON lines that failed to parse.
	SkippedLines []int
}

// Err returns a ParseError naming the skipped lines, or nil.
func (r *LoadReport) Err() error {
	if len(r.SkippedLines) == 0 {
		return nil
	}
	return fault.New(fault.ParseError, fmt.Sprintf("decode alert log lines %v", r.SkippedLines), nil)
}
