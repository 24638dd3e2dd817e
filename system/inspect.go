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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// HostInfo describes the machine the console runs on. Fields that could
// not be read are left empty.
type HostInfo struct {
	Hostname      string
	KernelVersion string
	Uptime        string
}

// hostname is swapped in tests.
var hostname = os.Hostname

// GetHostInfo reads the hostname, kernel release and uptime.
func GetHostInfo(fs FilesystemClient) HostInfo {
	info := HostInfo{}

	if name, err := hostname(); err == nil {
		info.Hostname = name
	}

	if data, err := fs.ReadFile("/proc/version"); err == nil {
		parts := strings.Fields(string(data))
		if len(parts) >= 3 {
			info.KernelVersion = parts[2]
		}
	}

	if data, err := fs.ReadFile("/proc/uptime"); err == nil {
		fields := strings.Fields(string(data))
		if len(fields) >= 1 {
			if seconds, err := strconv.ParseFloat(fields[0], 64); err == nil {
				info.Uptime = FormatDuration(time.Duration(seconds * float64(time.Second)))
			}
		}
	}

	return info
}

// FormatDuration renders d as "3d 4h 5m", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
