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

package alerts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record keys read by the normalizer. AddressKeys are synonyms tried in order.
var AddressKeys = []string{"ip", "src_ip", "source"}

const (
	TimestampKey = "timestamp"
	ActionKey    = "action"
	ReasonKey    = "reason"
)

// maxEpoch is 9999-12-31T23:59:59Z; larger epoch values are not instants.
const maxEpoch = 253402300799

// Textual timestamp layouts, tried in order. Layouts without a zone are
// read in the normalizer's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02 15",
	"2006-01-02",
	// basic ISO 8601
	"20060102T150405Z07:00",
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102T1504",
	"20060102T15",
}

// Normalizer converts raw records into Alerts.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer that reads zone-less timestamps in
// loc (UTC when nil).
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

var utcNormalizer = NewNormalizer(time.UTC)

// Normalize converts one record, reading zone-less timestamps as UTC.
func Normalize(record RawRecord) Alert {
	return utcNormalizer.Normalize(record)
}

// Normalize converts one record. It never fails: fields it cannot
// interpret are left absent, and the action falls back to UNKNOWN.
func (n *Normalizer) Normalize(record RawRecord) Alert {
	alert := Alert{Action: ActionUnknown}

	for _, key := range AddressKeys {
		if s, ok := text(record[key]); ok && s != "" {
			alert.Address = s
			break
		}
	}

	if s, ok := text(record[ActionKey]); ok {
		alert.Action = ParseAction(s)
	}

	if s, ok := text(record[ReasonKey]); ok {
		alert.Reason = s
	}

	if raw, ok := record[TimestampKey]; ok && raw != nil {
		alert.RawTimestamp, _ = text(raw)
		alert.Timestamp = n.parseTimestamp(raw)
	}

	return alert
}

// NormalizeAll converts every record, preserving order and count.
func (n *Normalizer) NormalizeAll(records []RawRecord) []Alert {
	out := make([]Alert, len(records))
	for i, r := range records {
		out[i] = n.Normalize(r)
	}
	return out
}

// parseTimestamp reads epoch seconds first and calendar text second.
// Numeric zero and empty text count as absent.
func (n *Normalizer) parseTimestamp(v any) time.Time {
	switch ts := v.(type) {
	case json.Number:
		f, err := ts.Float64()
		if err != nil || f == 0 {
			return time.Time{}
		}
		return fromEpoch(f)
	case float64:
		if ts == 0 {
			return time.Time{}
		}
		return fromEpoch(ts)
	case int:
		if ts == 0 {
			return time.Time{}
		}
		return fromEpoch(float64(ts))
	case int64:
		if ts == 0 {
			return time.Time{}
		}
		return fromEpoch(float64(ts))
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return time.Time{}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f)
		}
		return n.parseText(s)
	default:
		return time.Time{}
	}
}

func (n *Normalizer) parseText(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func fromEpoch(f float64) time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxEpoch {
		return time.Time{}
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// text renders a loosely typed value as a string. ok is false for nil.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}
