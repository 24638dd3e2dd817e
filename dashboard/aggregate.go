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

// Package dashboard derives the dashboard metrics from a batch of alerts
// and renders them as text.
package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/we-are-mono/jailwatch/alerts"
)

const (
	// DefaultRecentLimit caps the recent alert list.
	DefaultRecentLimit = 50
	// DisplayTimeLayout formats alert times in the recent list.
	DisplayTimeLayout = "2006-01-02 15:04:05"
)

// Metrics is what one refresh shows on the dashboard. It is a value:
// every refresh builds a new one.
type Metrics struct {
	UniqueBlockedCount int            `json:"unique_blocked_count"`
	PeriodAlertCount   int            `json:"period_alert_count"`
	AutoBlockActive    bool           `json:"auto_block_active"`
	PeriodStart        time.Time      `json:"period_start"`
	TotalAlerts        int            `json:"total_alerts"`
	Recent             []alerts.Alert `json:"-"`
	RecentDisplay      []string       `json:"recent"`
}

// Aggregator computes Metrics. Location is used for both the start of the
// counting day and the rendering of recent alert times.
type Aggregator struct {
	Location *time.Location
	Limit    int
}

// NewAggregator creates an aggregator. A nil location means UTC. The limit
// is kept within 1..DefaultRecentLimit; out of range values mean the cap.
func NewAggregator(loc *time.Location, limit int) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}
	return &Aggregator{Location: loc, Limit: limit}
}

// Aggregate computes the metrics for batch as seen at ref.
func (a *Aggregator) Aggregate(batch []alerts.Alert, ref time.Time) Metrics {
	start := a.PeriodStart(ref)
	blocked := make(map[string]struct{})

	m := Metrics{
		PeriodStart:   start,
		TotalAlerts:   len(batch),
		Recent:        []alerts.Alert{},
		RecentDisplay: []string{},
	}

	for _, alert := range batch {
		if alert.Action == alerts.ActionBlocked {
			m.AutoBlockActive = true
			if alert.HasAddress() {
				blocked[alert.Address] = struct{}{}
			}
		}
		// An alert without a usable time is counted as happening now.
		if !alert.HasTimestamp() || !alert.Timestamp.Before(start) {
			m.PeriodAlertCount++
		}
	}
	m.UniqueBlockedCount = len(blocked)

	m.Recent = a.MostRecent(batch)
	for _, alert := range m.Recent {
		m.RecentDisplay = append(m.RecentDisplay, a.DisplayLine(alert))
	}

	return m
}

// PeriodStart returns midnight of the day containing ref.
func (a *Aggregator) PeriodStart(ref time.Time) time.Time {
	local := ref.In(a.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.Location)
}

// MostRecent returns at most Limit alerts, newest first. Alerts without a
// timestamp sort last and keep their log order.
func (a *Aggregator) MostRecent(batch []alerts.Alert) []alerts.Alert {
	sorted := slices.Clone(batch)
	slices.SortStableFunc(sorted, func(x, y alerts.Alert) int {
		switch {
		case x.HasTimestamp() && !y.HasTimestamp():
			return -1
		case !x.HasTimestamp() && y.HasTimestamp():
			return 1
		default:
			return y.Timestamp.Compare(x.Timestamp)
		}
	})
	if len(sorted) > a.Limit {
		sorted = sorted[:a.Limit]
	}
	if sorted == nil {
		sorted = []alerts.Alert{}
	}
	return sorted
}

// DisplayLine renders "time - address - action - reason". Unparsed
// timestamps fall back to their raw text, or "-" when there was none.
func (a *Aggregator) DisplayLine(alert alerts.Alert) string {
	when := alert.RawTimestamp
	if alert.HasTimestamp() {
		when = alert.Timestamp.In(a.Location).Format(DisplayTimeLayout)
	}
	if when == "" {
		when = "-"
	}

	address := alert.Address
	if address == "" {
		address = "unknown"
	}

	return fmt.Sprintf("%s - %s - %s - %s", when, address, alert.Action, alert.Reason)
}

// HourlyCounts buckets the alerts of ref's day by wall-clock hour, from
// midnight up to and including ref's hour. Alerts without a timestamp are
// not placed. On a daylight saving day the repeated hour shares a bucket.
func (a *Aggregator) HourlyCounts(batch []alerts.Alert, ref time.Time) []float64 {
	start := a.PeriodStart(ref)
	end := start.AddDate(0, 0, 1)
	counts := make([]float64, ref.In(a.Location).Hour()+1)

	for _, alert := range batch {
		if !alert.HasTimestamp() || alert.Timestamp.Before(start) || !alert.Timestamp.Before(end) {
			continue
		}
		hour := alert.Timestamp.In(a.Location).Hour()
		if hour < len(counts) {
			counts[hour]++
		}
	}
	return counts
}
