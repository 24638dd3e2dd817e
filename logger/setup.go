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

package logger

import (
	"fmt"
	"io"
)

// Setup builds the backends named in config.Outputs, installs the result as
// the package-level logger and returns a function closing every backend.
// A journald backend that cannot start is skipped with a warning.
func Setup(config Config, stderr io.Writer) (Logger, func(), error) {
	var backends []Backend
	var warnings []string

	outputs := config.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	for _, output := range outputs {
		switch output {
		case "stderr":
			backends = append(backends, NewHclogBackend(stderr, config.Format == "json"))
		case "file":
			if config.FilePath == "" {
				return nil, nil, fmt.Errorf("file output requires a log file path")
			}
			fileBackend, err := NewFileBackend(config.FilePath, config.Format)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to initialize file backend: %w", err)
			}
			backends = append(backends, fileBackend)
		case "journald":
			journaldBackend, err := NewJournaldBackend(config.Format)
			if err != nil {
				warnings = append(warnings, err.Error())
				continue
			}
			backends = append(backends, journaldBackend)
		default:
			return nil, nil, fmt.Errorf("unknown log output: %s", output)
		}
	}

	Init(config, backends)

	for _, w := range warnings {
		Warn("Log backend unavailable", Field{Key: "error", Value: w})
	}

	closeAll := func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}

	return std, closeAll, nil
}
