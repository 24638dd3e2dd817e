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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/audit"
	"github.com/we-are-mono/jailwatch/dashboard"
)

var (
	auditJail  string
	auditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recorded unban attempts",
	Long:  `Lists unban attempts from the audit database, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditJail, "jail", "", "Only show attempts for this jail")
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 50, "Number of attempts to show (0 for all)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		store, err := openAudit(a.cfg.AuditDB, a.log)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		defer store.Close()

		entries, err := store.Recent(cmd.Context(), auditJail, auditLimit)
		if err != nil {
			return err
		}

		loc, err := a.cfg.Location()
		if err != nil {
			return err
		}
		printAuditEntries(cmd.OutOrStdout(), entries, loc)
		return nil
	})
}

func printAuditEntries(w io.Writer, entries []audit.Entry, loc *time.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No unban attempts recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tJAIL\tADDRESS\tRESULT")
	for _, e := range entries {
		result := "OK"
		if !e.Success {
			result = "FAILED: " + e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.In(loc).Format(dashboard.DisplayTimeLayout), e.Jail, e.Address, result)
	}
	_ = tw.Flush()
}
