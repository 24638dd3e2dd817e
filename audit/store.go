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

// Package audit records operator unban attempts in a SQLite database.
// Only what the operator did is kept; ban state still comes from the
// ban service on every refresh.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/we-are-mono/jailwatch/logger"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Entry is one unban attempt.
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Jail      string    `json:"jail"`
	Address   string    `json:"address"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Store is the audit database.
type Store struct {
	path string
	db   *sql.DB
	log  logger.Logger
}

// Open opens (creating if needed) the database at path.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		path: path,
		log:  log.With(logger.Field{Key: "component", Value: "audit"}),
	}

	if err := s.connect(); err != nil {
		return nil, err
	}
	if err := s.initializeSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) connect() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	// A single writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	s.db = db
	s.log.Debug("Connected to audit database", logger.Field{Key: "path", Value: s.path})
	return nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS unban_actions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  TEXT NOT NULL,
			jail       TEXT NOT NULL,
			address    TEXT NOT NULL,
			success    INTEGER NOT NULL,
			error      TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_unban_actions_jail ON unban_actions(jail);
		CREATE INDEX IF NOT EXISTS idx_unban_actions_address ON unban_actions(address);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create unban_actions table: %w", err)
	}
	return nil
}

// Record stores one attempt. A zero Timestamp is stamped with the current time.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unban_actions (timestamp, jail, address, success, error) VALUES (?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano), entry.Jail, entry.Address, entry.Success, entry.Error)
	if err != nil {
		return fmt.Errorf("failed to insert unban action: %w", err)
	}
	return nil
}

// Recent returns the newest attempts first. An empty jail matches every
// jail; a non-positive limit returns everything.
func (s *Store) Recent(ctx context.Context, jail string, limit int) ([]Entry, error) {
	query := "SELECT id, timestamp, jail, address, success, error FROM unban_actions WHERE 1=1"
	args := []interface{}{}

	if jail != "" {
		query += " AND jail = ?"
		args = append(args, jail)
	}

	query += " ORDER BY id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unban actions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			entry Entry
			ts    string
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.Jail, &entry.Address, &entry.Success, &entry.Error); err != nil {
			return nil, fmt.Errorf("failed to scan unban action: %w", err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q in unban action %d: %w", ts, entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unban actions: %w", err)
	}

	return entries, nil
}

// Count returns the number of stored attempts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM unban_actions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unban actions: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
