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

package exporter

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/jailwatch/alerts"
	"github.com/we-are-mono/jailwatch/dashboard"
	"github.com/we-are-mono/jailwatch/fail2ban"
	"github.com/we-are-mono/jailwatch/refresh"
	"github.com/we-are-mono/jailwatch/system"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Update(t *testing.T) {
	m := NewMetrics()
	m.Update(&refresh.Snapshot{
		TakenAt: time.Unix(1709290800, 0),
		Snapshot: fail2ban.Snapshot{Jails: []fail2ban.JailRecord{
			{Name: "sshd", BannedCount: 3},
			{Name: "nginx", BannedCount: 1},
		}},
		Alerts: []alerts.Alert{{}, {}},
		Metrics: dashboard.Metrics{
			UniqueBlockedCount: 5,
			PeriodAlertCount:   2,
			AutoBlockActive:    true,
		},
		Service:   system.ServiceStatus{Name: "fail2ban", Active: true},
		AutoBlock: system.ServiceStatus{Name: "firewall-auto-block"},
		Errors:    []error{errors.New("x")},
	})

	body := scrape(t, m)

	assert.Contains(t, body, "jailwatch_blocked_addresses 5")
	assert.Contains(t, body, "jailwatch_alerts_today 2")
	assert.Contains(t, body, "jailwatch_alerts_total_in_log 2")
	assert.Contains(t, body, "jailwatch_autoblock_active 1")
	assert.Contains(t, body, "jailwatch_refresh_errors 1")
	assert.Contains(t, body, `jailwatch_jail_banned{jail="sshd"} 3`)
	assert.Contains(t, body, `jailwatch_jail_banned{jail="nginx"} 1`)
	assert.Contains(t, body, `jailwatch_service_up{service="fail2ban"} 1`)
	assert.Contains(t, body, `jailwatch_service_up{service="firewall-auto-block"} 0`)
}

func TestMetrics_UpdateDropsVanishedJails(t *testing.T) {
	m := NewMetrics()
	m.Update(&refresh.Snapshot{Snapshot: fail2ban.Snapshot{Jails: []fail2ban.JailRecord{{Name: "sshd", BannedCount: 1}}}})
	m.Update(&refresh.Snapshot{Snapshot: fail2ban.Snapshot{Jails: []fail2ban.JailRecord{{Name: "nginx", BannedCount: 2}}}})

	body := scrape(t, m)

	assert.NotContains(t, body, `jail="sshd"`)
	assert.Contains(t, body, `jailwatch_jail_banned{jail="nginx"} 2`)
}

func TestNewMetrics_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
