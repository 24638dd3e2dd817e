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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/jailwatch/alerts"
	"github.com/we-are-mono/jailwatch/audit"
	"github.com/we-are-mono/jailwatch/ban"
	"github.com/we-are-mono/jailwatch/config"
	"github.com/we-are-mono/jailwatch/fail2ban"
	"github.com/we-are-mono/jailwatch/logger"
	"github.com/we-are-mono/jailwatch/refresh"
	"github.com/we-are-mono/jailwatch/system"
)

// auditStore is the part of audit.Store the commands use.
type auditStore interface {
	Record(ctx context.Context, entry audit.Entry) error
	Recent(ctx context.Context, jail string, limit int) ([]audit.Entry, error)
	Close() error
}

// Constructors swapped in tests.
var (
	newRunner = func(timeout time.Duration) system.CommandRunner {
		return system.NewDefaultCommandRunner(timeout)
	}
	newFilesystem = func() system.FilesystemClient {
		return system.NewDefaultFilesystemClient()
	}
	openAudit = func(path string, log logger.Logger) (auditStore, error) {
		store, err := audit.Open(path, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
)

// app holds everything a command needs, built from the config file.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	runner   system.CommandRunner
	fs       system.FilesystemClient
	client   *fail2ban.Client
	services *system.ServiceManager
	reader   *alerts.Reader
	closeLog func()
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, closeLog, err := logger.Setup(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Outputs:   cfg.Log.Outputs,
		FilePath:  cfg.Log.File,
		Component: "jailwatch",
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	runner := newRunner(cfg.CommandTimeout)
	fs := newFilesystem()

	return &app{
		cfg:      cfg,
		log:      log,
		runner:   runner,
		fs:       fs,
		client:   fail2ban.NewClient(runner, cfg.Fail2banClient, cfg.Workers, log),
		services: system.NewServiceManager(runner),
		reader:   alerts.NewReader(fs, log),
		closeLog: closeLog,
	}, nil
}

// refresher wires one refresh over the app's collaborators.
func (a *app) refresher() (*refresh.Refresher, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return refresh.NewRefresher(a.client, a.reader, a.services, refresh.Options{
		AlertLog:         a.cfg.AlertLog,
		Service:          a.cfg.Service,
		AutoBlockService: a.cfg.AutoBlockService,
		Location:         loc,
		RecentLimit:      a.cfg.RecentLimit,
	}, a.log), nil
}

// controller wires the unban controller. The audit store is optional: when
// it cannot be opened unbans still go ahead and a warning is logged.
func (a *app) controller(onChanged func()) (*ban.Controller, func()) {
	var recorder ban.Recorder
	closeStore := func() {}

	store, err := openAudit(a.cfg.AuditDB, a.log)
	if err != nil {
		a.log.Warn("Audit store unavailable, unban attempts will not be recorded",
			logger.Field{Key: "path", Value: a.cfg.AuditDB},
			logger.Field{Key: "error", Value: err})
	} else {
		recorder = store
		closeStore = func() { _ = store.Close() }
	}

	return ban.NewController(a.client, recorder, onChanged, a.log), closeStore
}

func (a *app) Close() {
	if a.closeLog != nil {
		a.closeLog()
	}
}

// withApp builds the app for a command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
