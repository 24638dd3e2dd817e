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
	"io/fs"
	"sync"
)

// MockFilesystemClient is a mock implementation of FilesystemClient for testing.
type MockFilesystemClient struct {
	mu sync.Mutex

	// State
	Files map[string][]byte

	// Call counters
	ReadFileCalls int

	// Error injection
	ReadFileError error
}

// NewMockFilesystemClient creates a new MockFilesystemClient.
func NewMockFilesystemClient() *MockFilesystemClient {
	return &MockFilesystemClient{
		Files: make(map[string][]byte),
	}
}

func (m *MockFilesystemClient) ReadFile(filename string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadFileCalls++

	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}

	data, ok := m.Files[filename]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filename, Err: fs.ErrNotExist}
	}
	return data, nil
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
// Commands are keyed by their full command line ("fail2ban-client status sshd").
type MockCommandRunner struct {
	mu sync.Mutex

	// State
	CommandOutputs map[string][]byte
	CommandErrors  map[string]error

	// Handler, when set, answers every command instead of the maps.
	Handler func(name string, args ...string) ([]byte, error)

	// Call tracking
	Commands [][]string
	RunCalls int

	// Error injection
	RunError error
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		CommandOutputs: make(map[string][]byte),
		CommandErrors:  make(map[string]error),
		Commands:       make([][]string, 0),
	}
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunCalls++

	cmd := append([]string{name}, args...)
	m.Commands = append(m.Commands, cmd)

	if m.Handler != nil {
		return m.Handler(name, args...)
	}

	if m.RunError != nil {
		return nil, m.RunError
	}

	cmdStr := commandLine(name, args)
	output := m.CommandOutputs[cmdStr]
	if err, ok := m.CommandErrors[cmdStr]; ok {
		return output, err
	}
	if output == nil {
		return []byte{}, nil
	}
	return output, nil
}

// SetOutput sets the output for a specific command.
func (m *MockCommandRunner) SetOutput(name string, args []string, output []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandOutputs[commandLine(name, args)] = output
}

// SetError makes a specific command fail with err.
func (m *MockCommandRunner) SetError(name string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandErrors[commandLine(name, args)] = err
}

// CallCount returns how many times the exact command line was run.
func (m *MockCommandRunner) CallCount(name string, args ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := commandLine(name, args)
	count := 0
	for _, cmd := range m.Commands {
		if commandLine(cmd[0], cmd[1:]) == want {
			count++
		}
	}
	return count
}

// String is used by test failure messages.
func (m *MockCommandRunner) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("MockCommandRunner{%d calls: %v}", m.RunCalls, m.Commands)
}
