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

// Package fail2ban talks to the ban service through fail2ban-client and
// turns its line-oriented status text into JailRecords.
package fail2ban

import (
	"strconv"
	"strings"
)

// Markers matched verbatim in fail2ban-client output.
const (
	JailListMarker        = "Jail list"
	CurrentlyBannedMarker = "Currently banned:"
	BannedListMarker      = "Banned IP list:"
	CurrentlyFailedMarker = "Currently failed:"
	TotalFailedMarker     = "Total failed:"
	TotalBannedMarker     = "Total banned:"
	FileListMarker        = "File list:"
	JournalMatchesMarker  = "Journal matches:"
)

// ParseJailList extracts the jail names from `fail2ban-client status`.
// The first line containing "Jail list" holds a comma-separated list after
// its first colon. No such line yields an empty, non-nil slice.
func ParseJailList(raw string) []string {
	jails := []string{}

	for _, line := range splitLines(raw) {
		if !strings.Contains(line, JailListMarker) {
			continue
		}

		_, value, found := strings.Cut(line, ":")
		if !found {
			return jails
		}
		for _, token := range strings.Split(value, ",") {
			if name := strings.TrimSpace(token); name != "" {
				jails = append(jails, name)
			}
		}
		return jails
	}

	return jails
}

// ParseJailDetail builds a JailRecord from `fail2ban-client status <jail>`.
// Missing lines leave zero values; that is what an idle jail looks like.
// Unparsable counters read as 0.
func ParseJailDetail(name, raw string) JailRecord {
	record := JailRecord{
		Name:            name,
		BannedAddresses: []string{},
	}

	seen := make(map[string]bool)
	for _, line := range splitLines(raw) {
		line = trimTree(line)

		marker, value, ok := matchMarker(line)
		if !ok || seen[marker] {
			continue
		}
		seen[marker] = true

		switch marker {
		case CurrentlyBannedMarker:
			record.BannedCount = parseCount(value)
		case BannedListMarker:
			record.BannedAddresses = append(record.BannedAddresses, strings.Fields(value)...)
		case CurrentlyFailedMarker:
			record.CurrentlyFailed = parseCount(value)
		case TotalFailedMarker:
			record.TotalFailed = parseCount(value)
		case TotalBannedMarker:
			record.TotalBanned = parseCount(value)
		case FileListMarker, JournalMatchesMarker:
			if record.FilterDescription == "" {
				record.FilterDescription = strings.TrimSpace(value)
			}
		}
	}

	return record
}

var detailMarkers = []string{
	CurrentlyBannedMarker,
	BannedListMarker,
	CurrentlyFailedMarker,
	TotalFailedMarker,
	TotalBannedMarker,
	FileListMarker,
	JournalMatchesMarker,
}

func matchMarker(line string) (marker, value string, ok bool) {
	for _, m := range detailMarkers {
		if strings.HasPrefix(line, m) {
			return m, line[len(m):], true
		}
	}
	return "", "", false
}

// trimTree drops indentation and the "|- " / "`- " tree drawing fail2ban
// puts in front of each field.
func trimTree(line string) string {
	return strings.TrimLeft(line, " \t|`-")
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
