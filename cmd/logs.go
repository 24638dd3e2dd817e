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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
	logsUnit   string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show service logs",
	Long: `Display logs of a systemd unit using journalctl. Without journalctl the
jailwatch log file is shown with tail instead.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

// lookJournalctl is swapped in tests.
var lookJournalctl = func() bool {
	_, err := exec.LookPath("journalctl")
	return err == nil
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output in real-time")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since time (e.g., '1 hour ago', '2024-01-01')")
	logsCmd.Flags().StringVarP(&logsUnit, "unit", "u", "jailwatch", "Unit to show (e.g. fail2ban, firewall-auto-block)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	if lookJournalctl() {
		return streamCommand(cmd, "journalctl", journalctlArgs(logsUnit, logsFollow, logsLines, logsSince))
	}

	return withApp(cmd, func(a *app) error {
		if _, err := os.Stat(a.cfg.Log.File); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("log file not found: %s (is file logging enabled?)", a.cfg.Log.File)
		}
		if logsSince != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "[WARN] --since flag is not supported without journalctl, ignoring")
		}
		return streamCommand(cmd, "tail", tailArgs(a.cfg.Log.File, logsFollow, logsLines))
	})
}

func journalctlArgs(unit string, follow bool, lines int, since string) []string {
	args := []string{"-u", unit}
	if follow {
		args = append(args, "-f")
	}
	if lines > 0 && !follow {
		args = append(args, "-n", strconv.Itoa(lines))
	}
	if since != "" {
		args = append(args, "--since", since)
	}
	if !follow {
		args = append(args, "--no-pager")
	}
	return args
}

func tailArgs(file string, follow bool, lines int) []string {
	var args []string
	if follow {
		args = append(args, "-f")
	}
	if lines > 0 {
		args = append(args, "-n", strconv.Itoa(lines))
	}
	return append(args, file)
}

// streamCommand runs name attached to the command's streams until it exits
// or the command context is cancelled.
func streamCommand(cmd *cobra.Command, name string, args []string) error {
	execCmd := exec.CommandContext(cmd.Context(), name, args...) //nolint:gosec // fixed executable, flags built above
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}
