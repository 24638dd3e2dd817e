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

package fail2ban

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/we-are-mono/jailwatch/fault"
	"github.com/we-are-mono/jailwatch/logger"
	"github.com/we-are-mono/jailwatch/system"
	"golang.org/x/sync/errgroup"
)

// DefaultBinary is the ban service's command-line client.
const DefaultBinary = "fail2ban-client"

// Client queries and drives the ban service.
type Client struct {
	runner  system.CommandRunner
	binary  string
	workers int
	log     logger.Logger

	missingOnce sync.Once
}

// NewClient creates a client. workers bounds how many per-jail status
// queries Snapshot runs at once.
func NewClient(runner system.CommandRunner, binary string, workers int, log logger.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		runner:  runner,
		binary:  binary,
		workers: workers,
		log:     log.With(logger.Field{Key: "component", Value: "fail2ban"}),
	}
}

// run executes the client. The returned text is usable even when err is a
// CommandFailed: the status command prints useful output on non-zero exits.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	output, err := c.runner.Run(ctx, c.binary, args...)
	if err == nil {
		return string(output), nil
	}

	switch fault.KindOf(err) {
	case fault.CommandNotFound:
		c.missingOnce.Do(func() {
			c.log.Warn("Ban service client not installed, jail data unavailable",
				logger.Field{Key: "command", Value: c.binary})
		})
		return "", err
	case fault.CommandUnavailable:
		c.log.Warn("Ban service client timed out", logger.Field{Key: "error", Value: err})
	default:
		c.log.Debug("Ban service client exited with error", logger.Field{Key: "error", Value: err})
	}
	return string(output), err
}

// Jails lists the configured jail names.
func (c *Client) Jails(ctx context.Context) ([]string, error) {
	raw, err := c.run(ctx, "status")
	return ParseJailList(raw), err
}

// Jail queries the status of a single jail.
func (c *Client) Jail(ctx context.Context, name string) (JailRecord, error) {
	raw, err := c.run(ctx, "status", name)
	return ParseJailDetail(name, raw), err
}

// BannedAddresses returns the addresses currently banned in a jail.
func (c *Client) BannedAddresses(ctx context.Context, jail string) ([]string, error) {
	record, err := c.Jail(ctx, jail)
	return record.BannedAddresses, err
}

// Unban lifts the ban on one address in one jail.
func (c *Client) Unban(ctx context.Context, jail, address string) error {
	output, err := c.run(ctx, "set", jail, "unbanip", address)
	if err != nil {
		return fmt.Errorf("unban %s from %s: %w", address, jail, err)
	}
	c.log.Debug("Unban command completed",
		logger.Field{Key: "jail", Value: jail},
		logger.Field{Key: "address", Value: address},
		logger.Field{Key: "output", Value: output})
	return nil
}

// Snapshot queries the jail list and then every jail, at most c.workers at
// a time. Jails keep the order of the service's list; duplicate names are
// queried once. Failures are joined into Snapshot.Err without discarding
// the jails that did answer.
func (c *Client) Snapshot(ctx context.Context) *Snapshot {
	names, listErr := c.Jails(ctx)
	names = uniqueNames(names)

	records := make([]JailRecord, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			records[i], errs[i] = c.Jail(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	jailErrs := make(map[string]error)
	for i, err := range errs {
		if err != nil {
			jailErrs[names[i]] = err
		}
	}

	return &Snapshot{
		Jails:      records,
		Err:        errors.Join(append([]error{listErr}, errs...)...),
		JailErrors: jailErrs,
	}
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
