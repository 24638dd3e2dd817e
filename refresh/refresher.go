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

// Package refresh builds dashboard snapshots and schedules their
// rebuilding. Every refresh produces a new Snapshot; nothing is merged
// with the previous one.
package refresh

import (
	"context"
	"time"

	"github.com/we-are-mono/jailwatch/alerts"
	"github.com/we-are-mono/jailwatch/dashboard"
	"github.com/we-are-mono/jailwatch/fail2ban"
	"github.com/we-are-mono/jailwatch/logger"
	"github.com/we-are-mono/jailwatch/system"
)

// JailSource queries every jail of the ban service.
type JailSource interface {
	Snapshot(ctx context.Context) *fail2ban.Snapshot
}

// AlertSource reads the alert log.
type AlertSource interface {
	Load(path string) (*alerts.LoadReport, error)
}

// ServiceSource reports whether a service is running.
type ServiceSource interface {
	Status(ctx context.Context, service string) system.ServiceStatus
}

// Options configures a Refresher.
type Options struct {
	AlertLog         string
	Service          string
	AutoBlockService string
	Location         *time.Location
	RecentLimit      int
}

// Snapshot is everything one refresh found. The embedded jail snapshot
// carries the jails and their per-jail query failures.
type Snapshot struct {
	fail2ban.Snapshot
	TakenAt   time.Time
	Alerts    []alerts.Alert
	LogFormat alerts.Format
	Metrics   dashboard.Metrics
	Service   system.ServiceStatus
	AutoBlock system.ServiceStatus
	// Errors lists the recoverable failures met during the refresh.
	Errors []error
}

// Refresher runs one refresh: jails, alert log, services, metrics.
type Refresher struct {
	jails      JailSource
	alerts     AlertSource
	services   ServiceSource
	normalizer *alerts.Normalizer
	aggregator *dashboard.Aggregator
	opts       Options
	log        logger.Logger
	now        func() time.Time
}

// NewRefresher creates a Refresher. services may be nil, in which case
// service states are left unknown.
func NewRefresher(jails JailSource, alertSource AlertSource, services ServiceSource, opts Options, log logger.Logger) *Refresher {
	if log == nil {
		log = logger.Nop()
	}
	return &Refresher{
		jails:      jails,
		alerts:     alertSource,
		services:   services,
		normalizer: alerts.NewNormalizer(opts.Location),
		aggregator: dashboard.NewAggregator(opts.Location, opts.RecentLimit),
		opts:       opts,
		log:        log.With(logger.Field{Key: "component", Value: "refresh"}),
		now:        time.Now,
	}
}

// Aggregator returns the aggregator used for metrics.
func (r *Refresher) Aggregator() *dashboard.Aggregator {
	return r.aggregator
}

// Refresh builds a new snapshot. It never fails: whatever could not be
// read is left empty and reported in Snapshot.Errors.
func (r *Refresher) Refresh(ctx context.Context) *Snapshot {
	snap := &Snapshot{
		Snapshot: fail2ban.Snapshot{Jails: []fail2ban.JailRecord{}},
		TakenAt:  r.now(),
	}

	if r.jails != nil {
		jails := r.jails.Snapshot(ctx)
		snap.Snapshot = *jails
		if snap.Jails == nil {
			snap.Jails = []fail2ban.JailRecord{}
		}
		if jails.Err != nil {
			snap.Errors = append(snap.Errors, jails.Err)
		}
	}

	report, err := r.alerts.Load(r.opts.AlertLog)
	if err != nil {
		snap.Errors = append(snap.Errors, err)
	}
	if report == nil {
		report = &alerts.LoadReport{Format: alerts.FormatEmpty}
	}
	if err := report.Err(); err != nil {
		snap.Errors = append(snap.Errors, err)
	}
	snap.LogFormat = report.Format
	snap.Alerts = r.normalizer.NormalizeAll(report.Records)
	snap.Metrics = r.aggregator.Aggregate(snap.Alerts, snap.TakenAt)

	snap.Service = system.ServiceStatus{Name: r.opts.Service, State: "unknown"}
	snap.AutoBlock = system.ServiceStatus{Name: r.opts.AutoBlockService, State: "unknown"}
	if r.services != nil {
		if r.opts.Service != "" {
			snap.Service = r.services.Status(ctx, r.opts.Service)
		}
		if r.opts.AutoBlockService != "" {
			snap.AutoBlock = r.services.Status(ctx, r.opts.AutoBlockService)
		}
	}

	r.log.Debug("Refresh complete",
		logger.Field{Key: "jails", Value: len(snap.Jails)},
		logger.Field{Key: "alerts", Value: len(snap.Alerts)},
		logger.Field{Key: "errors", Value: len(snap.Errors)},
		logger.Field{Key: "took", Value: time.Since(snap.TakenAt).String()})

	return snap
}
