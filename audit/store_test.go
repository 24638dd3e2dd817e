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

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "audit.db")
	store, err := Open(dbPath, nil)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func TestOpen_CreatesSchema(t *testing.T) {
	store, _ := setupTestStore(t)

	var name string
	err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='unban_actions'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "unban_actions", name)
}

func TestOpen_Reopen(t *testing.T) {
	store, path := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, Entry{Jail: "sshd", Address: "1.2.3.4", Success: true}))
	require.NoError(t, store.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_RecordAndRecent(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	when := time.Date(2024, 3, 1, 10, 0, 0, 123, time.UTC)

	require.NoError(t, store.Record(ctx, Entry{Timestamp: when, Jail: "sshd", Address: "1.2.3.4", Success: true}))
	require.NoError(t, store.Record(ctx, Entry{Timestamp: when.Add(time.Second), Jail: "sshd", Address: "bad", Error: "exit status 1"}))
	require.NoError(t, store.Record(ctx, Entry{Jail: "nginx", Address: "5.6.7.8", Success: true}))

	all, err := store.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "nginx", all[0].Jail)
	assert.False(t, all[0].Timestamp.IsZero())

	sshd, err := store.Recent(ctx, "sshd", 0)
	require.NoError(t, err)
	require.Len(t, sshd, 2)
	assert.Equal(t, "bad", sshd[0].Address)
	assert.False(t, sshd[0].Success)
	assert.Equal(t, "exit status 1", sshd[0].Error)
	assert.True(t, sshd[1].Success)
	assert.True(t, when.Equal(sshd[1].Timestamp))

	limited, err := store.Recent(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_RecentEmpty(t *testing.T) {
	store, _ := setupTestStore(t)

	entries, err := store.Recent(context.Background(), "sshd", 10)

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStore_ClosedDatabase(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.Close())

	err := store.Record(context.Background(), Entry{Jail: "sshd", Address: "1.2.3.4"})
	assert.Error(t, err)
}
