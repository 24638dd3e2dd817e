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
	"os/exec"

	"golang.org/x/sys/unix"
)

// DefaultDependencies are the executables the console shells out to.
var DefaultDependencies = []string{"iptables", "fail2ban-client", "ss", "systemctl"}

// Dependency reports whether an executable is on PATH.
type Dependency struct {
	Name  string
	Path  string
	Found bool
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// geteuid is swapped in tests.
var geteuid = unix.Geteuid

// IsPrivileged reports whether the process runs with an effective UID of 0.
func IsPrivileged() bool {
	return geteuid() == 0
}

// CheckDependencies resolves each executable on PATH.
func CheckDependencies(names ...string) []Dependency {
	if len(names) == 0 {
		names = DefaultDependencies
	}

	deps := make([]Dependency, 0, len(names))
	for _, name := range names {
		path, err := lookPath(name)
		deps = append(deps, Dependency{
			Name:  name,
			Path:  path,
			Found: err == nil,
		})
	}
	return deps
}

// MissingDependencies returns the names from deps that were not found.
func MissingDependencies(deps []Dependency) []string {
	var missing []string
	for _, d := range deps {
		if !d.Found {
			missing = append(missing, d.Name)
		}
	}
	return missing
}

// ListRules returns the raw `iptables -L -n -v` dump.
func ListRules(ctx context.Context, runner CommandRunner) ([]byte, error) {
	return runner.Run(ctx, "iptables", "-L", "-n", "-v")
}
