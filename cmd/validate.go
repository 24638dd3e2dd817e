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

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and the alert log",
	Long: `Checks the config file and environment overrides, then reads the alert
log and reports its format and any lines that could not be parsed.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n\n", configPath)
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(w, "[FAIL] config: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintln(w, "[OK] config: valid")

	return withApp(cmd, func(a *app) error {
		report, err := a.reader.Load(a.cfg.AlertLog)
		if err != nil {
			fmt.Fprintf(w, "[FAIL] %s: %v\n", a.cfg.AlertLog, err)
			return fmt.Errorf("validation failed")
		}

		switch {
		case len(report.SkippedLines) > 0:
			fmt.Fprintf(w, "[WARN] %s: %d record(s), %d malformed line(s): %v\n",
				a.cfg.AlertLog, len(report.Records), len(report.SkippedLines), report.SkippedLines)
		default:
			fmt.Fprintf(w, "[OK] %s: %d record(s) (%s)\n", a.cfg.AlertLog, len(report.Records), report.Format)
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "All checks passed")
		return nil
	})
}
