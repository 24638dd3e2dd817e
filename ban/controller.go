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

// Package ban lifts bans on operator request, one address at a time.
package ban

import (
	"context"
	"sort"
	"time"

	"github.com/we-are-mono/jailwatch/audit"
	"github.com/we-are-mono/jailwatch/logger"
)

// Service is the part of the ban service client the controller drives.
type Service interface {
	Unban(ctx context.Context, jail, address string) error
	BannedAddresses(ctx context.Context, jail string) ([]string, error)
}

// Recorder keeps a trail of unban attempts.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Outcome is the result of a bulk unban. Partial success is normal.
type Outcome struct {
	Jail      string              `json:"jail"`
	Succeeded map[string]struct{} `json:"-"`
	Failed    map[string]struct{} `json:"-"`
	// Errors holds the failure of each address in Failed.
	Errors map[string]error `json:"-"`
}

func newOutcome(jail string) *Outcome {
	return &Outcome{
		Jail:      jail,
		Succeeded: make(map[string]struct{}),
		Failed:    make(map[string]struct{}),
		Errors:    make(map[string]error),
	}
}

// SucceededList returns the succeeded addresses, sorted.
func (o *Outcome) SucceededList() []string {
	return sortedKeys(o.Succeeded)
}

// FailedList returns the failed addresses, sorted.
func (o *Outcome) FailedList() []string {
	return sortedKeys(o.Failed)
}

// Empty reports whether nothing was attempted.
func (o *Outcome) Empty() bool {
	return len(o.Succeeded) == 0 && len(o.Failed) == 0
}

// Controller issues unban requests. It never retries.
type Controller struct {
	service   Service
	recorder  Recorder
	onChanged func()
	log       logger.Logger
	now       func() time.Time
}

// NewController creates a controller. recorder and onChanged may be nil;
// onChanged runs after every Unban or UnbanAll that attempted anything,
// and is where callers force a refresh.
func NewController(service Service, recorder Recorder, onChanged func(), log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		service:   service,
		recorder:  recorder,
		onChanged: onChanged,
		log:       log.With(logger.Field{Key: "component", Value: "ban"}),
		now:       time.Now,
	}
}

// Unban requests each address's release from jail independently. Repeated
// addresses are requested once and empty ones are ignored. A failure is
// recorded in the outcome and processing continues.
func (c *Controller) Unban(ctx context.Context, jail string, addresses []string) *Outcome {
	outcome := newOutcome(jail)

	for _, addr := range addresses {
		if addr == "" || outcome.has(addr) {
			continue
		}

		err := c.service.Unban(ctx, jail, addr)
		if err != nil {
			outcome.Failed[addr] = struct{}{}
			outcome.Errors[addr] = err
			c.log.Warn("Unban failed",
				logger.Field{Key: "jail", Value: jail},
				logger.Field{Key: "address", Value: addr},
				logger.Field{Key: "error", Value: err})
		} else {
			outcome.Succeeded[addr] = struct{}{}
			c.log.Info("Address unbanned",
				logger.Field{Key: "jail", Value: jail},
				logger.Field{Key: "address", Value: addr})
		}
		c.record(ctx, jail, addr, err)
	}

	if !outcome.Empty() && c.onChanged != nil {
		c.onChanged()
	}
	return outcome
}

// UnbanAll releases every address currently banned in jail. An empty ban
// list is an empty outcome. If the list cannot be read at all the error is
// returned with an empty outcome.
func (c *Controller) UnbanAll(ctx context.Context, jail string) (*Outcome, error) {
	addresses, err := c.service.BannedAddresses(ctx, jail)
	if len(addresses) == 0 {
		return newOutcome(jail), err
	}
	if err != nil {
		c.log.Debug("Ban list read with errors, using parsed addresses",
			logger.Field{Key: "jail", Value: jail},
			logger.Field{Key: "error", Value: err})
	}
	return c.Unban(ctx, jail, addresses), nil
}

func (c *Controller) record(ctx context.Context, jail, addr string, unbanErr error) {
	if c.recorder == nil {
		return
	}
	entry := audit.Entry{
		Timestamp: c.now(),
		Jail:      jail,
		Address:   addr,
		Success:   unbanErr == nil,
	}
	if unbanErr != nil {
		entry.Error = unbanErr.Error()
	}
	if err := c.recorder.Record(ctx, entry); err != nil {
		c.log.Warn("Failed to record unban attempt", logger.Field{Key: "error", Value: err})
	}
}

func (o *Outcome) has(addr string) bool {
	_, ok := o.Succeeded[addr]
	if !ok {
		_, ok = o.Failed[addr]
	}
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
