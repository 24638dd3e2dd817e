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
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/ban"
	"github.com/we-are-mono/jailwatch/validation"
)

var (
	unbanAll bool
	unbanYes bool
)

var unbanCmd = &cobra.Command{
	Use:   "unban <jail> [address...]",
	Short: "Lift bans in a jail",
	Long: `Requests the release of each address from the jail. Every address is
tried even when an earlier one fails; the outcome lists both.

With --all, every address currently banned in the jail is released.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnban,
}

func init() {
	rootCmd.AddCommand(unbanCmd)
	unbanCmd.Flags().BoolVar(&unbanAll, "all", false, "Unban every address currently banned in the jail")
	unbanCmd.Flags().BoolVarP(&unbanYes, "yes", "y", false, "Do not ask for confirmation")
}

func runUnban(cmd *cobra.Command, args []string) error {
	jail, addresses := args[0], args[1:]
	if !unbanAll && len(addresses) == 0 {
		return fmt.Errorf("no addresses given (use --all to unban every address in %s)", jail)
	}
	if unbanAll && len(addresses) > 0 {
		return fmt.Errorf("--all cannot be combined with explicit addresses")
	}

	// fail2ban has the final say on what it accepts
	for _, addr := range addresses {
		if err := validation.ValidateBanTarget(addr); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "[WARN] %v, sending it anyway\n", err)
		}
	}

	prompt := fmt.Sprintf("Unban these addresses from jail '%s'?\n  %s", jail, strings.Join(addresses, "\n  "))
	if unbanAll {
		prompt = fmt.Sprintf("Unban every address in jail '%s'?", jail)
	}
	if !unbanYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	return withApp(cmd, func(a *app) error {
		ctrl, closeStore := a.controller(nil)
		defer closeStore()

		var outcome *ban.Outcome
		if unbanAll {
			var err error
			outcome, err = ctrl.UnbanAll(cmd.Context(), jail)
			if err != nil {
				return fmt.Errorf("failed to read banned addresses of %s: %w", jail, err)
			}
		} else {
			outcome = ctrl.Unban(cmd.Context(), jail, addresses)
		}

		printOutcome(cmd.OutOrStdout(), outcome)
		if len(outcome.Failed) > 0 {
			return fmt.Errorf("%d of %d unban(s) failed", len(outcome.Failed), len(outcome.Failed)+len(outcome.Succeeded))
		}
		return nil
	})
}

func printOutcome(w io.Writer, outcome *ban.Outcome) {
	if outcome.Empty() {
		fmt.Fprintf(w, "Nothing to unban in %s\n", outcome.Jail)
		return
	}
	for _, addr := range outcome.SucceededList() {
		fmt.Fprintf(w, "[OK] %s unbanned from %s\n", addr, outcome.Jail)
	}
	for _, addr := range outcome.FailedList() {
		fmt.Fprintf(w, "[FAIL] %s: %v\n", addr, outcome.Errors[addr])
	}
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
