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

package fail2ban

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/jailwatch/fault"
	"github.com/we-are-mono/jailwatch/logger"
	"github.com/we-are-mono/jailwatch/system"
)

func newTestClient(runner system.CommandRunner) (*Client, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug"}, []logger.Backend{logger.NewBufferBackend(&buf, "text")})
	return NewClient(runner, "", 2, log), &buf
}

func TestClient_Jails(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetOutput("fail2ban-client", []string{"status"}, []byte(globalStatus))
	client, _ := newTestClient(runner)

	jails, err := client.Jails(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"sshd", "apache", "postfix-sasl"}, jails)
}

func TestClient_JailsParsesOutputOnFailure(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetOutput("fail2ban-client", []string{"status"}, []byte(globalStatus))
	runner.SetError("fail2ban-client", []string{"status"},
		&fault.Error{Kind: fault.CommandFailed, Op: "fail2ban-client status", Err: errors.New("exit status 255")})
	client, _ := newTestClient(runner)

	jails, err := client.Jails(context.Background())

	assert.True(t, fault.Is(err, fault.CommandFailed))
	assert.Equal(t, []string{"sshd", "apache", "postfix-sasl"}, jails)
}

func TestClient_MissingBinaryWarnsOnce(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.RunError = fault.New(fault.CommandNotFound, "fail2ban-client", exec.ErrNotFound)
	client, buf := newTestClient(runner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		jails, err := client.Jails(ctx)
		assert.Empty(t, jails)
		assert.True(t, fault.Is(err, fault.CommandNotFound))
	}

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("not installed")))
}

func TestClient_Jail(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetOutput("fail2ban-client", []string{"status", "sshd"}, []byte(sshdStatus))
	client, _ := newTestClient(runner)

	record, err := client.Jail(context.Background(), "sshd")

	require.NoError(t, err)
	assert.Equal(t, "sshd", record.Name)
	assert.Equal(t, 3, record.BannedCount)
}

func TestClient_BannedAddresses(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetOutput("fail2ban-client", []string{"status", "sshd"}, []byte(sshdStatus))
	client, _ := newTestClient(runner)

	addrs, err := client.BannedAddresses(context.Background(), "sshd")

	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, addrs)
}

func TestClient_Unban(t *testing.T) {
	runner := system.NewMockCommandRunner()
	client, _ := newTestClient(runner)

	require.NoError(t, client.Unban(context.Background(), "sshd", "1.2.3.4"))
	assert.Equal(t, 1, runner.CallCount("fail2ban-client", "set", "sshd", "unbanip", "1.2.3.4"))
}

func TestClient_UnbanFailure(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetError("fail2ban-client", []string{"set", "sshd", "unbanip", "bad"},
		&fault.Error{Kind: fault.CommandFailed, Op: "unban", Err: errors.New("exit status 1")})
	client, _ := newTestClient(runner)

	err := client.Unban(context.Background(), "sshd", "bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unban bad from sshd")
	assert.True(t, fault.Is(err, fault.CommandFailed))
}

func TestClient_Snapshot(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetOutput("fail2ban-client", []string{"status"}, []byte("Jail list: sshd, apache, sshd"))
	runner.SetOutput("fail2ban-client", []string{"status", "sshd"}, []byte(sshdStatus))
	runner.SetOutput("fail2ban-client", []string{"status", "apache"}, []byte("Currently banned: 1\nBanned IP list: 9.9.9.9"))
	client, _ := newTestClient(runner)

	snap := client.Snapshot(context.Background())

	require.NoError(t, snap.Err)
	require.Len(t, snap.Jails, 2)
	assert.Equal(t, "sshd", snap.Jails[0].Name)
	assert.Equal(t, "apache", snap.Jails[1].Name)
	assert.Equal(t, 4, snap.TotalBanned())
	assert.Equal(t, 1, runner.CallCount("fail2ban-client", "status", "sshd"))
}

func TestClient_SnapshotPartialFailure(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetOutput("fail2ban-client", []string{"status"}, []byte("Jail list: sshd, apache"))
	runner.SetOutput("fail2ban-client", []string{"status", "sshd"}, []byte(sshdStatus))
	runner.SetError("fail2ban-client", []string{"status", "apache"},
		&fault.Error{Kind: fault.CommandUnavailable, Op: "fail2ban-client status apache"})
	client, _ := newTestClient(runner)

	snap := client.Snapshot(context.Background())

	require.Error(t, snap.Err)
	assert.True(t, fault.Is(snap.Err, fault.CommandUnavailable))
	require.Len(t, snap.Jails, 2)
	assert.Equal(t, 3, snap.Jails[0].BannedCount)
	assert.Equal(t, "apache", snap.Jails[1].Name)
	assert.Equal(t, 0, snap.Jails[1].BannedCount)
	assert.True(t, snap.JailOK("sshd"))
	assert.False(t, snap.JailOK("apache"))
}

func TestClient_SnapshotNoService(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.RunError = fault.New(fault.CommandNotFound, "fail2ban-client", exec.ErrNotFound)
	client, _ := newTestClient(runner)

	snap := client.Snapshot(context.Background())

	assert.Empty(t, snap.Jails)
	assert.True(t, fault.Is(snap.Err, fault.CommandNotFound))
	assert.Equal(t, 1, runner.RunCalls)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(system.NewMockCommandRunner(), "", 0, nil)
	assert.Equal(t, DefaultBinary, client.binary)
	assert.Equal(t, 1, client.workers)
}
