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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/ban"
	"github.com/we-are-mono/jailwatch/dashboard"
	"github.com/we-are-mono/jailwatch/exporter"
	"github.com/we-are-mono/jailwatch/refresh"
	"golang.org/x/sync/errgroup"
)

var (
	watchInterval    time.Duration
	watchMetricsAddr string
	watchHistory     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously refresh the dashboard",
	Long: `Refreshes the dashboard on a fixed interval until Ctrl+C.

Commands read from stdin while watching:
  <enter>                      refresh now
  unban <jail> <address...>    lift bans and refresh
  q                            quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "Refresh interval (default from config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (default from config)")
	watchCmd.Flags().IntVar(&watchHistory, "history", 60, "Number of refreshes kept for the trend graph")
}

// console renders snapshots published by the scheduler.
type console struct {
	out     io.Writer
	history *dashboard.History
	metrics *exporter.Metrics

	mu      sync.Mutex
	message string
}

func (c *console) setMessage(msg string) {
	c.mu.Lock()
	c.message = msg
	c.mu.Unlock()
}

func (c *console) publish(snap *refresh.Snapshot) {
	c.history.Add(snap.Metrics.UniqueBlockedCount, snap.TotalBanned(), snap.TakenAt)
	if c.metrics != nil {
		c.metrics.Update(snap)
	}

	var buf bytes.Buffer
	buf.WriteString("\033[H\033[2J")
	printCompactStatus(&buf, snap)
	buf.WriteString("\n")
	buf.WriteString(c.history.Plot())

	c.mu.Lock()
	if c.message != "" {
		buf.WriteString("\n")
		buf.WriteString(c.message)
		buf.WriteString("\n")
	}
	c.mu.Unlock()

	fmt.Fprintf(&buf, "\nUpdated %s. Enter to refresh, 'unban <jail> <addr>', q to quit.\n",
		snap.TakenAt.Format(dashboard.DisplayTimeLayout))
	_, _ = c.out.Write(buf.Bytes())
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		r, err := a.refresher()
		if err != nil {
			return err
		}

		interval := a.cfg.RefreshInterval
		if watchInterval > 0 {
			interval = watchInterval
		}
		addr := a.cfg.MetricsAddr
		if watchMetricsAddr != "" {
			addr = watchMetricsAddr
		}

		c := &console{out: cmd.OutOrStdout(), history: dashboard.NewHistory(watchHistory)}
		if addr != "" {
			c.metrics = exporter.NewMetrics()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := refresh.NewScheduler(r, interval, c.publish, a.log)
		ctrl, closeStore := a.controller(sched.Trigger)
		defer closeStore()

		go readConsoleInput(ctx, cmd.InOrStdin(), sched, ctrl, c, stop)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return sched.Run(gctx) })
		if c.metrics != nil {
			g.Go(func() error { return c.metrics.Serve(gctx, addr, a.log) })
		}
		return g.Wait()
	})
}

// readConsoleInput handles one command per line until stdin closes or quit
// is requested.
func readConsoleInput(ctx context.Context, in io.Reader, sched *refresh.Scheduler, ctrl *ban.Controller, c *console, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 0:
			sched.Trigger()
		case fields[0] == "q" || fields[0] == "quit":
			quit()
			return
		case fields[0] == "unban" && len(fields) >= 3:
			outcome := ctrl.Unban(ctx, fields[1], fields[2:])
			var buf bytes.Buffer
			printOutcome(&buf, outcome)
			c.setMessage(strings.TrimRight(buf.String(), "\n"))
			sched.Trigger()
		default:
			c.setMessage(fmt.Sprintf("Unknown command %q", scanner.Text()))
			sched.Trigger()
		}
	}
}
