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

package refresh

import (
	"context"
	"time"

	"github.com/we-are-mono/jailwatch/logger"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 5 * time.Second

// Source produces snapshots.
type Source interface {
	Refresh(ctx context.Context) *Snapshot
}

// Scheduler runs refreshes on a fixed interval and on demand. All
// refreshes happen on the goroutine that called Run, one at a time.
type Scheduler struct {
	source   Source
	interval time.Duration
	publish  func(*Snapshot)
	trigger  chan struct{}
	log      logger.Logger
}

// NewScheduler creates a scheduler that hands each snapshot to publish.
func NewScheduler(source Source, interval time.Duration, publish func(*Snapshot), log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if publish == nil {
		publish = func(*Snapshot) {}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		source:   source,
		interval: interval,
		publish:  publish,
		trigger:  make(chan struct{}, 1),
		log:      log.With(logger.Field{Key: "component", Value: "scheduler"}),
	}
}

// Trigger requests a refresh without waiting for it. Requests made while
// one is already pending collapse into it.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes immediately and then until ctx is cancelled. A manual
// trigger restarts the interval. A tick that fires during a refresh is
// handled after it, not alongside it.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Scheduler started", logger.Field{Key: "interval", Value: s.interval.String()})
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
			ticker.Reset(s.interval)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.publish(s.source.Refresh(ctx))
}
