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
	"github.com/we-are-mono/jailwatch/fail2ban"
	"github.com/we-are-mono/jailwatch/fault"
)

var jailsCmd = &cobra.Command{
	Use:   "jails",
	Short: "List fail2ban jails",
	Long:  `Lists every jail with its status, filter and number of banned addresses.`,
	Args:  cobra.NoArgs,
	RunE:  runJails,
}

var jailsShowCmd = &cobra.Command{
	Use:   "show <jail>",
	Short: "Show one jail and its banned addresses",
	Args:  cobra.ExactArgs(1),
	RunE:  runJailsShow,
}

func init() {
	rootCmd.AddCommand(jailsCmd)
	jailsCmd.AddCommand(jailsShowCmd)
}

func runJails(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		snap := a.client.Snapshot(cmd.Context())
		w := cmd.OutOrStdout()

		if fault.Is(snap.Err, fault.CommandNotFound) {
			fmt.Fprintf(w, "[WARN] %s is not installed\n", a.cfg.Fail2banClient)
			return nil
		}

		printJailTable(w, snap)
		return nil
	})
}

func runJailsShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		record, err := a.client.Jail(cmd.Context(), args[0])
		if err != nil && !fault.Is(err, fault.CommandFailed) {
			return fmt.Errorf("failed to query jail %s: %w", args[0], err)
		}
		printJailDetail(cmd.OutOrStdout(), record)
		return nil
	})
}

func printJailDetail(w io.Writer, record fail2ban.JailRecord) {
	fmt.Fprintf(w, "Jail: %s\n", record.Name)
	filter := record.FilterDescription
	if filter == "" {
		filter = "-"
	}
	fmt.Fprintf(w, "  Filter:           %s\n", filter)
	fmt.Fprintf(w, "  Currently failed: %d\n", record.CurrentlyFailed)
	fmt.Fprintf(w, "  Total failed:     %d\n", record.TotalFailed)
	fmt.Fprintf(w, "  Currently banned: %d\n", record.BannedCount)
	fmt.Fprintf(w, "  Total banned:     %d\n", record.TotalBanned)
	fmt.Fprintln(w)

	if len(record.BannedAddresses) == 0 {
		fmt.Fprintln(w, "No banned addresses")
		return
	}
	fmt.Fprintln(w, "Banned addresses:")
	for _, addr := range record.BannedAddresses {
		fmt.Fprintf(w, "  %s\n", addr)
	}
}
