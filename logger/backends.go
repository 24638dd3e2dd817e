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

package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

func format(entry *Entry, format string) (string, error) {
	if format == "json" {
		jsonBytes, err := entry.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to marshal log entry: %w", err)
		}
		return string(jsonBytes), nil
	}
	return entry.ToText(), nil
}

// BufferBackend writes entries to an in-memory buffer (used by tests).
type BufferBackend struct {
	buffer *bytes.Buffer
	format string // "json" or "text"
	mu     sync.Mutex
}

func NewBufferBackend(buffer *bytes.Buffer, format string) *BufferBackend {
	return &BufferBackend{
		buffer: buffer,
		format: format,
	}
}

func (b *BufferBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	output, err := format(entry, b.format)
	if err != nil {
		return err
	}
	if _, err := b.buffer.WriteString(output + "\n"); err != nil {
		return fmt.Errorf("failed to write to buffer: %w", err)
	}
	return nil
}

func (b *BufferBackend) Close() error {
	return nil
}

// FileBackend appends entries to a log file.
type FileBackend struct {
	path   string
	format string
	file   *os.File
	mu     sync.Mutex
}

func NewFileBackend(path string, format string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileBackend{
		path:   path,
		format: format,
		file:   file,
	}, nil
}

func (b *FileBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	output, err := format(entry, b.format)
	if err != nil {
		return err
	}
	if _, err := b.file.WriteString(output + "\n"); err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file != nil {
		return b.file.Close()
	}
	return nil
}

// JournaldBackend forwards entries to the journal through systemd-cat.
type JournaldBackend struct {
	format string
	mu     sync.Mutex
}

func NewJournaldBackend(format string) (*JournaldBackend, error) {
	if _, err := exec.LookPath("systemd-cat"); err != nil {
		return nil, fmt.Errorf("systemd-cat not found: %w", err)
	}

	return &JournaldBackend{
		format: format,
	}, nil
}

func (b *JournaldBackend) Write(entry *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	output, err := format(entry, b.format)
	if err != nil {
		return err
	}

	priority := "6" // info
	switch entry.Level {
	case "debug":
		priority = "7"
	case "warn":
		priority = "4"
	case "error":
		priority = "3"
	}

	cmd := exec.Command("systemd-cat", "-t", "jailwatch", "-p", priority)
	cmd.Stdin = strings.NewReader(output)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	return nil
}

func (b *JournaldBackend) Close() error {
	return nil
}

// HclogBackend renders entries through hclog, for interactive terminals.
type HclogBackend struct {
	log hclog.Logger
}

// NewHclogBackend creates a backend writing to w. Filtering happens in the
// Logger, so hclog itself is opened at trace level.
func NewHclogBackend(w io.Writer, jsonFormat bool) *HclogBackend {
	return &HclogBackend{
		log: hclog.New(&hclog.LoggerOptions{
			Name:       "jailwatch",
			Output:     w,
			Level:      hclog.Trace,
			JSONFormat: jsonFormat,
		}),
	}
}

func (b *HclogBackend) Write(entry *Entry) error {
	args := make([]interface{}, 0, len(entry.Fields)*2)
	for _, k := range entry.sortedKeys() {
		args = append(args, k, entry.Fields[k])
	}

	l := b.log
	if entry.Component != "" {
		l = l.Named(entry.Component)
	}

	switch entry.Level {
	case "debug":
		l.Debug(entry.Message, args...)
	case "warn":
		l.Warn(entry.Message, args...)
	case "error":
		l.Error(entry.Message, args...)
	default:
		l.Info(entry.Message, args...)
	}
	return nil
}

func (b *HclogBackend) Close() error {
	return nil
}
