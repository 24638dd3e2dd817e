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

// Package system wraps the host: external command execution, files,
// systemd services and privilege/dependency checks. Every external call is
// bounded by a timeout and classified with a fault.Kind.
package system

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/we-are-mono/jailwatch/fault"
)

// DefaultCommandTimeout bounds a single external command.
const DefaultCommandTimeout = 5 * time.Second

// CommandRunner executes external commands.
type CommandRunner interface {
	// Run executes a command and returns its combined output. On failure the
	// error is a *fault.Error whose Output still carries what was printed.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// FilesystemClient abstracts file reads.
type FilesystemClient interface {
	// ReadFile reads the entire file content
	ReadFile(filename string) ([]byte, error)
}

// DefaultFilesystemClient implements FilesystemClient using the os package.
type DefaultFilesystemClient struct{}

// NewDefaultFilesystemClient creates a new DefaultFilesystemClient.
func NewDefaultFilesystemClient() *DefaultFilesystemClient {
	return &DefaultFilesystemClient{}
}

func (c *DefaultFilesystemClient) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// DefaultCommandRunner implements CommandRunner using real command execution.
type DefaultCommandRunner struct {
	Timeout time.Duration
}

// NewDefaultCommandRunner creates a runner bounding each command by timeout.
// A non-positive timeout falls back to DefaultCommandTimeout.
func NewDefaultCommandRunner(timeout time.Duration) *DefaultCommandRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &DefaultCommandRunner{Timeout: timeout}
}

func (c *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	op := commandLine(name, args)

	if _, err := exec.LookPath(name); err != nil {
		return nil, fault.New(fault.CommandNotFound, op, err)
	}

	// Caller cancellation does not kill a running command; only the timeout does.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...) //nolint:gosec // Callers pass fixed executables
	cmd.WaitDelay = time.Second

	output, err := cmd.CombinedOutput()
	if err == nil {
		return output, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return output, &fault.Error{Kind: fault.CommandUnavailable, Op: op, Output: output, Err: err}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, fault.New(fault.CommandNotFound, op, err)
	}
	return output, &fault.Error{Kind: fault.CommandFailed, Op: op, Output: output, Err: err}
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
