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
	"io"

	"github.com/guptarohit/asciigraph"
)

// NoAlertsText is shown in place of the recent list when the log is empty.
const NoAlertsText = "No alerts yet..."

// WriteMetrics renders the metric summary and the recent alert list.
func WriteMetrics(w io.Writer, m Metrics) error {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Blocked addresses:  %d\n", m.UniqueBlockedCount))
	buf.WriteString(fmt.Sprintf("Alerts today:       %d (since %s)\n",
		m.PeriodAlertCount, m.PeriodStart.Format("2006-01-02 15:04 MST")))
	buf.WriteString(fmt.Sprintf("Auto-block:         %s\n", onOff(m.AutoBlockActive)))
	buf.WriteString("\n")

	if len(m.RecentDisplay) == 0 {
		buf.WriteString(NoAlertsText + "\n")
	} else {
		buf.WriteString(fmt.Sprintf("Recent alerts (%d of %d):\n", len(m.RecentDisplay), m.TotalAlerts))
		for _, line := range m.RecentDisplay {
			buf.WriteString("  " + line + "\n")
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// PlotHourly draws today's alerts per hour.
func PlotHourly(counts []float64) string {
	if len(counts) < 2 {
		total := 0.0
		for _, c := range counts {
			total += c
		}
		return fmt.Sprintf("Alerts this hour: %.0f\n", total)
	}
	return asciigraph.Plot(counts,
		asciigraph.Height(8),
		asciigraph.Width(48),
		asciigraph.Precision(0),
		asciigraph.Caption("Alerts per hour since midnight")) + "\n"
}

func onOff(active bool) string {
	if active {
		return "ON"
	}
	return "OFF"
}
