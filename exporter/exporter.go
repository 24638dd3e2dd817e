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

// Package exporter publishes the latest refresh as Prometheus gauges.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/we-are-mono/jailwatch/logger"
	"github.com/we-are-mono/jailwatch/refresh"
)

// Metrics holds the gauges mirrored from each snapshot.
type Metrics struct {
	registry *prometheus.Registry

	BlockedAddresses prometheus.Gauge
	AlertsToday      prometheus.Gauge
	AlertsTotal      prometheus.Gauge
	AutoBlockActive  prometheus.Gauge
	RefreshErrors    prometheus.Gauge
	LastRefresh      prometheus.Gauge
	JailBanned       *prometheus.GaugeVec
	ServiceUp        *prometheus.GaugeVec
}

// NewMetrics creates the gauges on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BlockedAddresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jailwatch_blocked_addresses",
			Help: "Distinct addresses with a BLOCKED alert in the alert log",
		}),
		AlertsToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jailwatch_alerts_today",
			Help: "Alerts since midnight, including alerts without a timestamp",
		}),
		AlertsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jailwatch_alerts_total_in_log",
			Help: "Records in the alert log",
		}),
		AutoBlockActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jailwatch_autoblock_active",
			Help: "1 if the alert log contains a BLOCKED alert",
		}),
		RefreshErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jailwatch_refresh_errors",
			Help: "Recoverable errors met by the last refresh",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jailwatch_last_refresh_timestamp_seconds",
			Help: "Unix time of the last refresh",
		}),
		JailBanned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jailwatch_jail_banned",
			Help: "Addresses currently banned per jail",
		}, []string{"jail"}),
		ServiceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jailwatch_service_up",
			Help: "1 if the service is active",
		}, []string{"service"}),
	}

	m.registry.MustRegister(
		m.BlockedAddresses,
		m.AlertsToday,
		m.AlertsTotal,
		m.AutoBlockActive,
		m.RefreshErrors,
		m.LastRefresh,
		m.JailBanned,
		m.ServiceUp,
	)

	return m
}

// Update replaces every gauge with the snapshot's values. Jails that
// disappeared from the service are dropped.
func (m *Metrics) Update(snap *refresh.Snapshot) {
	m.BlockedAddresses.Set(float64(snap.Metrics.UniqueBlockedCount))
	m.AlertsToday.Set(float64(snap.Metrics.PeriodAlertCount))
	m.AlertsTotal.Set(float64(len(snap.Alerts)))
	m.AutoBlockActive.Set(boolToFloat(snap.Metrics.AutoBlockActive))
	m.RefreshErrors.Set(float64(len(snap.Errors)))
	m.LastRefresh.Set(float64(snap.TakenAt.Unix()))

	m.JailBanned.Reset()
	for _, jail := range snap.Jails {
		m.JailBanned.WithLabelValues(jail.Name).Set(float64(jail.BannedCount))
	}

	m.ServiceUp.Reset()
	for _, svc := range []struct {
		name   string
		active bool
	}{
		{snap.Service.Name, snap.Service.Active},
		{snap.AutoBlock.Name, snap.AutoBlock.Active},
	} {
		if svc.name != "" {
			m.ServiceUp.WithLabelValues(svc.name).Set(boolToFloat(svc.active))
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Metrics server shutdown failed", logger.Field{Key: "error", Value: err})
		}
	}()

	log.Info("Serving metrics", logger.Field{Key: "addr", Value: addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
