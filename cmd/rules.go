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
	"github.com/we-are-mono/jailwatch/system"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the packet filter rules",
	Long:  `Prints the iptables rule set with packet counters (iptables -L -n -v).`,
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		output, err := system.ListRules(cmd.Context(), a.runner)
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(output)
		return err
	})
}
