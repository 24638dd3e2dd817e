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

package validation

import (
	"errors"
	"fmt"
)

// ErrorCollector gathers every problem in a config instead of stopping at
// the first one.
type ErrorCollector struct {
	errs []error
	ctx  string // prefix such as "log"
}

// NewCollector creates an empty collector.
func NewCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// WithContext prefixes errors collected from now on with ctx.
func (ec *ErrorCollector) WithContext(ctx string) *ErrorCollector {
	ec.ctx = ctx
	return ec
}

// Check collects err unless it is nil.
func (ec *ErrorCollector) Check(err error) {
	if err == nil {
		return
	}
	if ec.ctx != "" {
		err = fmt.Errorf("%s: %w", ec.ctx, err)
	}
	ec.errs = append(ec.errs, err)
}

// CheckMsg collects err, if not nil, as "msg: err".
func (ec *ErrorCollector) CheckMsg(err error, msg string) {
	if err == nil {
		return
	}
	ec.Check(fmt.Errorf("%s: %w", msg, err))
}

// Error joins everything collected, or returns nil.
func (ec *ErrorCollector) Error() error {
	return errors.Join(ec.errs...)
}
