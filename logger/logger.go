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

// Package logger provides structured logging for jailwatch.
// Entries fan out to one or more backends (file, journald, hclog, buffer).
package logger

import (
	"fmt"
	"os"
	"sync"
)

// Logger is the interface every component logs through.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger // Create child logger with preset fields
}

// Field is a structured key/value attached to an entry.
type Field struct {
	Key   string
	Value interface{}
}

// Backend receives formatted entries.
type Backend interface {
	Write(entry *Entry) error
	Close() error
}

// Config holds logger settings.
type Config struct {
	Level     string   // debug, info, warn, error
	Format    string   // text, json
	Outputs   []string // file, journald, stderr
	FilePath  string   // Path to log file
	Component string   // Default component name
}

type standardLogger struct {
	level     LogLevel
	format    string
	backends  []Backend
	component string
	fields    map[string]interface{}
	mu        sync.RWMutex
}

// LogLevel orders severities.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a LogLevel, defaulting to info.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// New creates a logger writing to the given backends.
func New(config Config, backends []Backend) Logger {
	return &standardLogger{
		level:     ParseLevel(config.Level),
		format:    config.Format,
		backends:  backends,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

// Nop returns a logger that drops everything.
func Nop() Logger {
	return &standardLogger{
		level:  LevelError + 1,
		fields: make(map[string]interface{}),
	}
}

func (l *standardLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

func (l *standardLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

func (l *standardLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

func (l *standardLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

func (l *standardLogger) With(fields ...Field) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}

	component := l.component
	for _, f := range fields {
		// "component" selects the entry component instead of becoming a field
		if f.Key == "component" {
			if s, ok := f.Value.(string); ok {
				component = s
				continue
			}
		}
		newFields[f.Key] = f.Value
	}

	return &standardLogger{
		level:     l.level,
		format:    l.format,
		backends:  l.backends,
		component: component,
		fields:    newFields,
	}
}

func (l *standardLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	mergedFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		mergedFields[k] = v
	}
	for _, f := range fields {
		mergedFields[f.Key] = f.Value
	}

	entry := NewEntry(level.String(), l.component, msg, mergedFields)

	for _, backend := range l.backends {
		if err := backend.Write(entry); err != nil {
			// Log backend errors to stderr (fallback)
			fmt.Fprintf(os.Stderr, "Logger backend error: %v\n", err)
		}
	}
}

var std = Nop()

// Init replaces the package-level logger.
func Init(config Config, backends []Backend) {
	std = New(config, backends)
}

// Default returns the package-level logger.
func Default() Logger {
	return std
}

func Debug(msg string, fields ...Field) {
	std.Debug(msg, fields...)
}

func Info(msg string, fields ...Field) {
	std.Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	std.Warn(msg, fields...)
}

func Error(msg string, fields ...Field) {
	std.Error(msg, fields...)
}
