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
	"io"
	"io/fs"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/alerts"
	"github.com/we-are-mono/jailwatch/dashboard"
	"github.com/we-are-mono/jailwatch/system"
)

var (
	alertsLimit  int
	alertsAction string
	alertsRaw    bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show recent auto-block alerts",
	Long: `Reads the auto-block alert log and prints the most recent alerts, newest
first. With --raw the plain-text and JSON logs are printed as they are.`,
	Args: cobra.NoArgs,
	RunE: runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.Flags().IntVarP(&alertsLimit, "limit", "n", 0, "Number of alerts to show (default from config)")
	alertsCmd.Flags().StringVar(&alertsAction, "action", "", "Only show alerts with this action (BLOCKED, UNBLOCKED, ALERT)")
	alertsCmd.Flags().BoolVar(&alertsRaw, "raw", false, "Print the raw log files")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		w := cmd.OutOrStdout()
		if alertsRaw {
			printRawLog(w, a.fs, "Plain log", a.cfg.PlainLog)
			fmt.Fprintln(w)
			printRawLog(w, a.fs, "JSON log", a.cfg.AlertLog)
			return nil
		}

		loc, err := a.cfg.Location()
		if err != nil {
			return err
		}
		limit := a.cfg.RecentLimit
		if alertsLimit > 0 {
			limit = alertsLimit
		}

		report, _ := a.reader.Load(a.cfg.AlertLog)
		batch := alerts.NewNormalizer(loc).NormalizeAll(report.Records)
		if alertsAction != "" {
			batch = filterAction(batch, alerts.ParseAction(alertsAction))
		}

		agg := dashboard.NewAggregator(loc, limit)
		recent := agg.MostRecent(batch)
		if len(recent) == 0 {
			fmt.Fprintln(w, dashboard.NoAlertsText)
			return nil
		}
		for _, alert := range recent {
			fmt.Fprintln(w, agg.DisplayLine(alert))
		}
		return nil
	})
}

func filterAction(batch []alerts.Alert, action alerts.Action) []alerts.Alert {
	out := []alerts.Alert{}
	for _, alert := range batch {
		if alert.Action == action {
			out = append(out, alert)
		}
	}
	return out
}

func printRawLog(w io.Writer, filesystem system.FilesystemClient, title, path string) {
	fmt.Fprintf(w, "== %s (%s) ==\n", title, path)
	data, err := filesystem.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintln(w, "(not found)")
	case err != nil:
		fmt.Fprintf(w, "(unreadable: %v)\n", err)
	case len(data) == 0:
		fmt.Fprintln(w, "(empty)")
	default:
		_, _ = w.Write(data)
		if data[len(data)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
}
