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
	"github.com/we-are-mono/jailwatch/logger"
)

var serviceAutoBlock bool

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Control the fail2ban or auto-block service",
	Long: `Starts, stops, restarts or queries the fail2ban service through systemctl.
With --autoblock the auto-block daemon is controlled instead.`,
}

var serviceStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the service",
	Args:  cobra.NoArgs,
	RunE:  serviceAction("start"),
}

var serviceStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the service",
	Args:  cobra.NoArgs,
	RunE:  serviceAction("stop"),
}

var serviceRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the service",
	Args:  cobra.NoArgs,
	RunE:  serviceAction("restart"),
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the service is running",
	Args:  cobra.NoArgs,
	RunE:  runServiceStatus,
}

func init() {
	rootCmd.AddCommand(serviceCmd)
	serviceCmd.AddCommand(serviceStartCmd, serviceStopCmd, serviceRestartCmd, serviceStatusCmd)
	serviceCmd.PersistentFlags().BoolVar(&serviceAutoBlock, "autoblock", false, "Act on the auto-block service instead of fail2ban")
}

func (a *app) serviceName() string {
	if serviceAutoBlock {
		return a.cfg.AutoBlockService
	}
	return a.cfg.Service
}

func serviceAction(action string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			name := a.serviceName()
			var err error
			switch action {
			case "start":
				err = a.services.Start(cmd.Context(), name)
			case "stop":
				err = a.services.Stop(cmd.Context(), name)
			case "restart":
				err = a.services.Restart(cmd.Context(), name)
			}
			if err != nil {
				return err
			}

			a.log.Info("Service control",
				logger.Field{Key: "service", Value: name},
				logger.Field{Key: "action", Value: action})
			fmt.Fprintln(cmd.OutOrStdout(), serviceLine(a.services.Status(cmd.Context(), name)))
			return nil
		})
	}
}

func runServiceStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		fmt.Fprintln(cmd.OutOrStdout(), serviceLine(a.services.Status(cmd.Context(), a.serviceName())))
		return nil
	})
}
