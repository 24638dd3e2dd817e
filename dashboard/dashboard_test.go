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

package dashboard

import (
	"bytes"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/jailwatch/alerts"
)

var ref = time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

func blocked(addr string, ts time.Time) alerts.Alert {
	return alerts.Alert{Address: addr, Action: alerts.ActionBlocked, Timestamp: ts}
}

func TestAggregate_Empty(t *testing.T) {
	m := NewAggregator(nil, 0).Aggregate(nil, ref)

	assert.Equal(t, 0, m.UniqueBlockedCount)
	assert.Equal(t, 0, m.PeriodAlertCount)
	assert.False(t, m.AutoBlockActive)
	assert.NotNil(t, m.RecentDisplay)
	assert.Empty(t, m.RecentDisplay)
}

func TestAggregate_UniqueBlocked(t *testing.T) {
	batch := []alerts.Alert{
		blocked("1.1.1.1", at(10, 0)),
		blocked("1.1.1.1", at(11, 0)),
		blocked("2.2.2.2", at(12, 0)),
		blocked("", at(12, 30)),
		{Address: "3.3.3.3", Action: alerts.ActionAlert, Timestamp: at(13, 0)},
		{Address: "4.4.4.4", Action: alerts.ActionUnblocked, Timestamp: at(13, 0)},
	}

	m := NewAggregator(time.UTC, 50).Aggregate(batch, ref)

	assert.Equal(t, 2, m.UniqueBlockedCount)
	assert.True(t, m.AutoBlockActive)
	assert.LessOrEqual(t, m.UniqueBlockedCount, 4)
}

func TestAggregate_AutoBlockNeedsBlockedAction(t *testing.T) {
	batch := []alerts.Alert{
		{Address: "3.3.3.3", Action: alerts.ActionAlert},
		{Action: alerts.ActionUnknown},
	}

	m := NewAggregator(time.UTC, 50).Aggregate(batch, ref)

	assert.False(t, m.AutoBlockActive)
	assert.Equal(t, 0, m.UniqueBlockedCount)
}

func TestAggregate_PeriodCount(t *testing.T) {
	yesterday := time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)
	batch := []alerts.Alert{
		blocked("1.1.1.1", at(0, 0)),  // at the boundary
		blocked("1.1.1.1", at(15, 0)), // today
		blocked("1.1.1.1", yesterday),
		{Action: alerts.ActionAlert, RawTimestamp: "garbage"},
		{Action: alerts.ActionUnknown},
	}

	m := NewAggregator(time.UTC, 50).Aggregate(batch, ref)

	assert.Equal(t, 4, m.PeriodAlertCount)
	assert.Equal(t, at(0, 0), m.PeriodStart)
	assert.Equal(t, 5, m.TotalAlerts)
}

func TestAggregate_PeriodFollowsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 2024-03-01 18:00 UTC is already 2024-03-02 01:00 at UTC+7.
	refLocal := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	batch := []alerts.Alert{
		blocked("1.1.1.1", time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)), // 23:00 local, yesterday
		blocked("1.1.1.1", time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)), // 00:30 local, today
	}

	agg := NewAggregator(loc, 50)
	m := agg.Aggregate(batch, refLocal)

	assert.Equal(t, 1, m.PeriodAlertCount)
	assert.True(t, time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC).Equal(m.PeriodStart))
	assert.Equal(t, "2024-03-02 00:30:00 - 1.1.1.1 - BLOCKED - ", m.RecentDisplay[0])
}

func TestAggregate_RecentOrderingAndLimit(t *testing.T) {
	var batch []alerts.Alert
	for i := 0; i < 70; i++ {
		batch = append(batch, blocked(fmt.Sprintf("10.0.0.%d", i), ref.Add(-time.Duration(i*7%70)*time.Minute)))
	}
	batch = append(batch, alerts.Alert{Action: alerts.ActionAlert})

	m := NewAggregator(time.UTC, 50).Aggregate(batch, ref)

	require.Len(t, m.Recent, 50)
	require.Len(t, m.RecentDisplay, 50)
	for i := 1; i < len(m.Recent); i++ {
		assert.False(t, m.Recent[i].Timestamp.After(m.Recent[i-1].Timestamp), "index %d out of order", i)
	}
}

func TestAggregate_RecentNeverOverCap(t *testing.T) {
	var batch []alerts.Alert
	for i := 0; i < 100; i++ {
		batch = append(batch, blocked(fmt.Sprintf("10.0.1.%d", i), ref.Add(-time.Duration(i)*time.Minute)))
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 50},
		{"below cap", 10, 10},
		{"at cap", 50, 50},
		{"above cap", 80, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAggregator(time.UTC, tt.limit).Aggregate(batch, ref)
			assert.Len(t, m.RecentDisplay, tt.want)
			assert.Len(t, m.Recent, tt.want)
		})
	}
}

func TestMostRecent_AbsentLastStable(t *testing.T) {
	batch := []alerts.Alert{
		{Address: "a", Action: alerts.ActionAlert},
		blocked("old", at(1, 0)),
		{Address: "b", Action: alerts.ActionAlert},
		blocked("new", at(9, 0)),
	}

	recent := NewAggregator(time.UTC, 50).MostRecent(batch)

	require.Len(t, recent, 4)
	assert.Equal(t, "new", recent[0].Address)
	assert.Equal(t, "old", recent[1].Address)
	assert.Equal(t, "a", recent[2].Address)
	assert.Equal(t, "b", recent[3].Address)
}

func TestMostRecent_DoesNotModifyInput(t *testing.T) {
	batch := []alerts.Alert{blocked("old", at(1, 0)), blocked("new", at(9, 0))}

	NewAggregator(time.UTC, 1).MostRecent(batch)

	assert.Equal(t, "old", batch[0].Address)
}

func TestDisplayLine(t *testing.T) {
	agg := NewAggregator(time.UTC, 50)

	tests := []struct {
		name     string
		alert    alerts.Alert
		expected string
	}{
		{
			name:     "full",
			alert:    alerts.Alert{Timestamp: at(10, 5), Address: "1.2.3.4", Action: alerts.ActionBlocked, Reason: "port scan"},
			expected: "2024-03-01 10:05:00 - 1.2.3.4 - BLOCKED - port scan",
		},
		{
			name:     "raw timestamp fallback",
			alert:    alerts.Alert{RawTimestamp: "yesterday", Action: alerts.ActionAlert},
			expected: "yesterday - unknown - ALERT - ",
		},
		{
			name:     "nothing",
			alert:    alerts.Alert{Action: alerts.ActionUnknown},
			expected: "- - unknown - UNKNOWN - ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, agg.DisplayLine(tt.alert))
		})
	}
}

func TestHourlyCounts(t *testing.T) {
	batch := []alerts.Alert{
		blocked("1.1.1.1", at(0, 10)),
		blocked("1.1.1.1", at(0, 50)),
		blocked("1.1.1.1", at(14, 0)),
		blocked("1.1.1.1", at(15, 29)),
		blocked("1.1.1.1", at(16, 0)), // after ref's hour
		blocked("1.1.1.1", time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)),
		{Action: alerts.ActionAlert},
	}

	counts := NewAggregator(time.UTC, 50).HourlyCounts(batch, ref)

	require.Len(t, counts, 16)
	assert.Equal(t, 2.0, counts[0])
	assert.Equal(t, 1.0, counts[14])
	assert.Equal(t, 1.0, counts[15])
}

func TestHourlyCounts_FallBackDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 2024-11-03 has 25 hours in New York; 01:00-02:00 happens twice.
	refLocal := time.Date(2024, 11, 3, 23, 30, 0, 0, loc)
	firstOne := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC)  // 01:30 EDT
	secondOne := time.Date(2024, 11, 3, 6, 30, 0, 0, time.UTC) // 01:30 EST
	batch := []alerts.Alert{
		blocked("1.1.1.1", time.Date(2024, 11, 3, 23, 10, 0, 0, loc)),
		blocked("1.1.1.1", firstOne),
		blocked("1.1.1.1", secondOne),
		blocked("1.1.1.1", time.Date(2024, 11, 4, 0, 10, 0, 0, loc)), // next day
	}

	counts := NewAggregator(loc, 50).HourlyCounts(batch, refLocal)

	require.Len(t, counts, 24)
	assert.Equal(t, 2.0, counts[1])
	assert.Equal(t, 1.0, counts[23])
	assert.Equal(t, 0.0, counts[0])
}

func TestWriteMetrics(t *testing.T) {
	agg := NewAggregator(time.UTC, 50)
	m := agg.Aggregate([]alerts.Alert{blocked("1.2.3.4", at(10, 0))}, ref)

	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, m))

	out := buf.String()
	assert.Contains(t, out, "Blocked addresses:  1")
	assert.Contains(t, out, "Alerts today:       1")
	assert.Contains(t, out, "Auto-block:         ON")
	assert.Contains(t, out, "2024-03-01 10:00:00 - 1.2.3.4 - BLOCKED - ")
}

func TestWriteMetrics_NoAlerts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, NewAggregator(nil, 0).Aggregate(nil, ref)))

	assert.Contains(t, buf.String(), NoAlertsText)
	assert.Contains(t, buf.String(), "Auto-block:         OFF")
}

func TestPlotHourly(t *testing.T) {
	assert.Equal(t, "Alerts this hour: 3\n", PlotHourly([]float64{3}))
	assert.Contains(t, PlotHourly([]float64{1, 4, 2}), "Alerts per hour since midnight")
}

func TestHistory_RingBuffer(t *testing.T) {
	h := NewHistory(3)
	start := ref

	for i := 0; i < 5; i++ {
		h.Add(i, i*2, start.Add(time.Duration(i)*5*time.Second))
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{2, 3, 4}, h.Blocked)
	assert.Equal(t, []float64{4, 6, 8}, h.Banned)
	assert.Equal(t, start.Add(10*time.Second), h.Timestamps[0])
}

func TestHistory_Plot(t *testing.T) {
	h := NewHistory(10)
	assert.Contains(t, h.Plot(), "Collecting data")

	h.Add(1, 2, ref)
	h.Add(3, 1, ref.Add(5*time.Second))

	out := h.Plot()
	assert.Contains(t, out, "Blocked addresses - last 5s:")
	assert.Contains(t, out, "Banned by jails - last 5s:")
}
