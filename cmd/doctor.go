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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/system"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host for everything jailwatch needs",
	Long:  `Shows host details, then checks required executables, privileges and the state of both services.`,
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

// Host checks swapped in tests.
var (
	checkDependencies = system.CheckDependencies
	isPrivileged      = system.IsPrivileged
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		w := cmd.OutOrStdout()

		host := system.GetHostInfo(a.fs)
		fmt.Fprintf(w, "Host:   %s\n", host.Hostname)
		fmt.Fprintf(w, "Kernel: %s\n", host.KernelVersion)
		fmt.Fprintf(w, "Uptime: %s\n", host.Uptime)
		fmt.Fprintln(w)

		deps := checkDependencies("iptables", a.cfg.Fail2banClient, "ss", "systemctl")
		printDependencies(w, deps)
		fmt.Fprintln(w)

		privileged := isPrivileged()
		fmt.Fprintf(w, "Running as root: %s\n", boolToYesNo(privileged))
		if !privileged {
			fmt.Fprintln(w, "[WARN] fail2ban-client and iptables usually need root")
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, serviceLine(a.services.Status(cmd.Context(), a.cfg.Service)))
		fmt.Fprintln(w, serviceLine(a.services.Status(cmd.Context(), a.cfg.AutoBlockService)))

		if missing := system.MissingDependencies(deps); len(missing) > 0 {
			return fmt.Errorf("missing dependencies: %v", missing)
		}
		return nil
	})
}

func printDependencies(w io.Writer, deps []system.Dependency) {
	fmt.Fprintln(w, "DEPENDENCIES")
	fmt.Fprintln(w, "------------")
	for _, d := range deps {
		if d.Found {
			fmt.Fprintf(w, "[OK] %-16s %s\n", d.Name, d.Path)
		} else {
			fmt.Fprintf(w, "[MISSING] %s\n", d.Name)
		}
	}
}
