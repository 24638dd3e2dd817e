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

package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/we-are-mono/jailwatch/fault"
)

// ServiceStatus is the result of `systemctl is-active`.
type ServiceStatus struct {
	Name   string
	State  string // active, inactive, failed, unknown ...
	Active bool
	Err    error // set when the state could not be determined
}

// ServiceManager controls systemd units through systemctl.
type ServiceManager struct {
	runner    CommandRunner
	systemctl string
}

// NewServiceManager creates a ServiceManager.
func NewServiceManager(runner CommandRunner) *ServiceManager {
	return &ServiceManager{
		runner:    runner,
		systemctl: "systemctl",
	}
}

func (m *ServiceManager) Start(ctx context.Context, service string) error {
	return m.control(ctx, "start", service)
}

func (m *ServiceManager) Stop(ctx context.Context, service string) error {
	return m.control(ctx, "stop", service)
}

func (m *ServiceManager) Restart(ctx context.Context, service string) error {
	return m.control(ctx, "restart", service)
}

func (m *ServiceManager) control(ctx context.Context, action, service string) error {
	if _, err := m.runner.Run(ctx, m.systemctl, action, service); err != nil {
		return fmt.Errorf("failed to %s %s: %w", action, service, err)
	}
	return nil
}

// Status reports whether service is running. Only the literal state
// "active" counts as running.
func (m *ServiceManager) Status(ctx context.Context, service string) ServiceStatus {
	status := ServiceStatus{Name: service, State: "unknown"}

	output, err := m.runner.Run(ctx, m.systemctl, "is-active", service)
	state := strings.TrimSpace(string(output))

	// is-active exits non-zero for every state except active, printing the state
	if err != nil && !(fault.Is(err, fault.CommandFailed) && state != "") {
		status.Err = err
		return status
	}

	if state != "" {
		status.State = state
	}
	status.Active = state == "active"
	return status
}
