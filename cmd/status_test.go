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

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/we-are-mono/jailwatch/ban"
	"github.com/we-are-mono/jailwatch/fail2ban"
	"github.com/we-are-mono/jailwatch/system"
)

// TestBoolToStatus tests boolean to status string conversion
func TestBoolToStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    bool
		expected string
	}{
		{
			name:     "true returns Active",
			input:    true,
			expected: "Active",
		},
		{
			name:     "false returns Inactive",
			input:    false,
			expected: "Inactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := boolToStatus(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestBoolToYesNo tests boolean to yes/no conversion
func TestBoolToYesNo(t *testing.T) {
	tests := []struct {
		name     string
		input    bool
		expected string
	}{
		{
			name:     "true returns Yes",
			input:    true,
			expected: "Yes",
		},
		{
			name:     "false returns No",
			input:    false,
			expected: "No",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := boolToYesNo(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestServiceLine(t *testing.T) {
	tests := []struct {
		name     string
		status   system.ServiceStatus
		expected string
	}{
		{
			name:     "running",
			status:   system.ServiceStatus{Name: "fail2ban", State: "active", Active: true},
			expected: "[OK] fail2ban: Running",
		},
		{
			name:     "stopped",
			status:   system.ServiceStatus{Name: "fail2ban", State: "failed"},
			expected: "[DOWN] fail2ban: Not running (failed)",
		},
		{
			name:     "unknown",
			status:   system.ServiceStatus{Name: "fail2ban", State: "unknown", Err: errors.New("timed out")},
			expected: "[WARN] fail2ban: Unable to check (timed out)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, serviceLine(tt.status))
		})
	}
}

func TestPrintJailTable(t *testing.T) {
	snap := &fail2ban.Snapshot{
		Jails: []fail2ban.JailRecord{
			{Name: "sshd", FilterDescription: "/var/log/auth.log", BannedCount: 3},
			{Name: "apache"},
		},
		JailErrors: map[string]error{"apache": errors.New("exit status 255")},
	}

	var buf bytes.Buffer
	printJailTable(&buf, snap)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Regexp(t, `^JAIL\s+STATUS\s+FILTER\s+BANNED$`, lines[0])
	assert.Regexp(t, `^sshd\s+OK\s+/var/log/auth.log\s+3$`, lines[1])
	assert.Regexp(t, `^apache\s+ERROR\s+-\s+0$`, lines[2])
}

func TestPrintJailTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	printJailTable(&buf, &fail2ban.Snapshot{})
	assert.Equal(t, "No jails reported\n", buf.String())
}

func TestPrintOutcome(t *testing.T) {
	outcome := &ban.Outcome{
		Jail:      "sshd",
		Succeeded: map[string]struct{}{"10.0.0.2": {}, "10.0.0.1": {}},
		Failed:    map[string]struct{}{"bad": {}},
		Errors:    map[string]error{"bad": errors.New("exit status 255")},
	}

	var buf bytes.Buffer
	printOutcome(&buf, outcome)

	assert.Equal(t, "[OK] 10.0.0.1 unbanned from sshd\n"+
		"[OK] 10.0.0.2 unbanned from sshd\n"+
		"[FAIL] bad: exit status 255\n", buf.String())
}

func TestPrintOutcome_Empty(t *testing.T) {
	var buf bytes.Buffer
	printOutcome(&buf, &ban.Outcome{Jail: "sshd"})
	assert.Equal(t, "Nothing to unban in sshd\n", buf.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.expected, confirm(strings.NewReader(tt.input), &out, "Proceed?"))
			assert.Equal(t, "Proceed? [y/N]: ", out.String())
		})
	}
}
