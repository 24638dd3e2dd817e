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
	"sync"
	"time"

	"github.com/guptarohit/asciigraph"
)

// History keeps the last few refreshes for the trend graph.
type History struct {
	mu sync.Mutex

	Blocked    []float64
	Banned     []float64
	Timestamps []time.Time
	maxSize    int
}

// NewHistory creates a history buffer holding at most size points.
func NewHistory(size int) *History {
	if size < 2 {
		size = 2
	}
	return &History{
		Blocked:    make([]float64, 0, size),
		Banned:     make([]float64, 0, size),
		Timestamps: make([]time.Time, 0, size),
		maxSize:    size,
	}
}

// Add appends a data point, dropping the oldest when full.
func (h *History) Add(blocked, banned int, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.Blocked) >= h.maxSize {
		h.Blocked = h.Blocked[1:]
		h.Banned = h.Banned[1:]
		h.Timestamps = h.Timestamps[1:]
	}
	h.Blocked = append(h.Blocked, float64(blocked))
	h.Banned = append(h.Banned, float64(banned))
	h.Timestamps = append(h.Timestamps, at)
}

// Len returns the number of points held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Blocked)
}

// Plot renders the blocked and banned trends, or a placeholder until two
// points exist.
func (h *History) Plot() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.Blocked) < 2 {
		return "Collecting data... graphs will appear shortly.\n"
	}

	var buf bytes.Buffer
	span := h.Timestamps[len(h.Timestamps)-1].Sub(h.Timestamps[0]).Round(time.Second)

	buf.WriteString(fmt.Sprintf("Blocked addresses - last %s:\n", span))
	buf.WriteString(asciigraph.Plot(h.Blocked,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(0)))
	buf.WriteString("\n\n")

	buf.WriteString(fmt.Sprintf("Banned by jails - last %s:\n", span))
	buf.WriteString(asciigraph.Plot(h.Banned,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(0)))
	buf.WriteString("\n")

	return buf.String()
}
