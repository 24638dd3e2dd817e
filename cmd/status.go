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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/dashboard"
	"github.com/we-are-mono/jailwatch/fail2ban"
	"github.com/we-are-mono/jailwatch/refresh"
	"github.com/we-are-mono/jailwatch/system"
)

var (
	verboseStatus bool
	statusGraph   bool
	statusJSON    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the firewall dashboard",
	Long:  `Runs one refresh and displays service states, jails, alert metrics and the most recent alerts.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVarP(&verboseStatus, "verbose", "v", false, "Show jail details and refresh errors")
	statusCmd.Flags().BoolVarP(&statusGraph, "graph", "g", false, "Add an hourly histogram of today's alerts")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the snapshot as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		r, err := a.refresher()
		if err != nil {
			return err
		}
		snap := r.Refresh(cmd.Context())
		w := cmd.OutOrStdout()

		if statusJSON {
			return printStatusJSON(w, snap)
		}

		if verboseStatus {
			printVerboseStatus(w, snap)
		} else {
			printCompactStatus(w, snap)
		}

		if statusGraph {
			fmt.Fprintln(w)
			fmt.Fprint(w, dashboard.PlotHourly(r.Aggregator().HourlyCounts(snap.Alerts, snap.TakenAt)))
		}
		return nil
	})
}

func printCompactStatus(w io.Writer, snap *refresh.Snapshot) {
	fmt.Fprintln(w, "jailwatch Firewall Console")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, serviceLine(snap.Service))
	fmt.Fprintln(w, serviceLine(snap.AutoBlock))
	fmt.Fprintf(w, "Jails: %d (%d banned)\n", len(snap.Jails), snap.TotalBanned())
	fmt.Fprintln(w)

	_ = dashboard.WriteMetrics(w, snap.Metrics)

	if len(snap.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[WARN] %d problem(s) during refresh, use 'jailwatch status -v' for details\n", len(snap.Errors))
	}
}

func printVerboseStatus(w io.Writer, snap *refresh.Snapshot) {
	fmt.Fprintln(w, "jailwatch Firewall Console - Detailed Status")
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, "Taken at: %s\n", snap.TakenAt.Format(time.RFC3339))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SERVICES")
	fmt.Fprintln(w, "--------")
	for _, svc := range []system.ServiceStatus{snap.Service, snap.AutoBlock} {
		fmt.Fprintf(w, "%-22s %s (%s)\n", svc.Name+":", boolToStatus(svc.Active), svc.State)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "JAILS")
	fmt.Fprintln(w, "-----")
	printJailTable(w, &snap.Snapshot)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ALERTS")
	fmt.Fprintln(w, "------")
	fmt.Fprintf(w, "Log format:         %s\n", snap.LogFormat)
	_ = dashboard.WriteMetrics(w, snap.Metrics)

	if len(snap.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "ERRORS")
		fmt.Fprintln(w, "------")
		for _, err := range snap.Errors {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}
}

func printJailTable(w io.Writer, snap *fail2ban.Snapshot) {
	if len(snap.Jails) == 0 {
		fmt.Fprintln(w, "No jails reported")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JAIL\tSTATUS\tFILTER\tBANNED")
	for _, jail := range snap.Jails {
		status := "OK"
		if !snap.JailOK(jail.Name) {
			status = "ERROR"
		}
		filter := jail.FilterDescription
		if filter == "" {
			filter = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", jail.Name, status, filter, jail.BannedCount)
	}
	_ = tw.Flush()
}

type statusView struct {
	TakenAt   time.Time             `json:"taken_at"`
	Service   serviceView           `json:"service"`
	AutoBlock serviceView           `json:"autoblock"`
	Jails     []fail2ban.JailRecord `json:"jails"`
	Metrics   dashboard.Metrics     `json:"metrics"`
	Errors    []string              `json:"errors"`
}

type serviceView struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Active bool   `json:"active"`
}

func printStatusJSON(w io.Writer, snap *refresh.Snapshot) error {
	view := statusView{
		TakenAt:   snap.TakenAt,
		Service:   serviceView{snap.Service.Name, snap.Service.State, snap.Service.Active},
		AutoBlock: serviceView{snap.AutoBlock.Name, snap.AutoBlock.State, snap.AutoBlock.Active},
		Jails:     snap.Jails,
		Metrics:   snap.Metrics,
		Errors:    []string{},
	}
	for _, err := range snap.Errors {
		view.Errors = append(view.Errors, err.Error())
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format status: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func serviceLine(svc system.ServiceStatus) string {
	switch {
	case svc.Active:
		return fmt.Sprintf("[OK] %s: Running", svc.Name)
	case svc.Err != nil:
		return fmt.Sprintf("[WARN] %s: Unable to check (%v)", svc.Name, svc.Err)
	default:
		return fmt.Sprintf("[DOWN] %s: Not running (%s)", svc.Name, svc.State)
	}
}

func boolToStatus(b bool) string {
	if b {
		return "Active"
	}
	return "Inactive"
}

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
