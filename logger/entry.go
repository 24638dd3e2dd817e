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
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Entry is a single structured log record.
type Entry struct {
	Timestamp string                 `json:"timestamp"` // RFC3339 format
	Level     string                 `json:"level"`     // debug, info, warn, error
	Component string                 `json:"component"` // refresh, alerts, fail2ban, ...
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
}

// NewEntry stamps a new entry with the current UTC time.
func NewEntry(level, component, message string, fields map[string]interface{}) *Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
	}
}

func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToText renders the entry as a single line with sorted key=value fields.
func (e *Entry) ToText() string {
	var b strings.Builder
	b.WriteString(e.Timestamp)
	b.WriteString(" [" + e.Level + "]")
	if e.Component != "" {
		b.WriteString(" [" + e.Component + "]")
	}
	b.WriteString(" " + e.Message)

	for _, k := range e.sortedKeys() {
		b.WriteString(" " + k + "=" + jsonString(e.Fields[k]))
	}

	return b.String()
}

func (e *Entry) sortedKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
