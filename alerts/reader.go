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

package alerts

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"

	"github.com/we-are-mono/jailwatch/fault"
	"github.com/we-are-mono/jailwatch/logger"
	"github.com/we-are-mono/jailwatch/system"
)

// Reader loads raw records from the alert log.
type Reader struct {
	fs  system.FilesystemClient
	log logger.Logger
}

// NewReader creates a Reader. A nil filesystem uses the real one.
func NewReader(filesystem system.FilesystemClient, log logger.Logger) *Reader {
	if filesystem == nil {
		filesystem = &system.DefaultFilesystemClient{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{
		fs:  filesystem,
		log: log.With(logger.Field{Key: "component", Value: "alerts"}),
	}
}

// Load reads and decodes the log at path. The report is never nil.
// A missing or empty file is an empty report with no error; any other read
// failure returns an empty report and a LogUnavailable error, which callers
// treat the same as "no alerts yet".
func (r *Reader) Load(path string) (*LoadReport, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadReport{Records: []RawRecord{}, Format: FormatEmpty}, nil
		}
		r.log.Warn("Alert log unreadable",
			logger.Field{Key: "path", Value: path},
			logger.Field{Key: "error", Value: err})
		return &LoadReport{Records: []RawRecord{}, Format: FormatEmpty},
			fault.New(fault.LogUnavailable, "read "+path, err)
	}

	report := Decode(data)
	if len(report.SkippedLines) > 0 {
		r.log.Warn("Skipped malformed alert log lines",
			logger.Field{Key: "path", Value: path},
			logger.Field{Key: "lines", Value: report.SkippedLines})
	}
	return report, nil
}

// Decode interprets data as one JSON document (an array of records or a
// single record) and falls back to newline-delimited JSON when that fails.
// Array elements and NDJSON lines that are valid JSON but not objects
// become empty records.
func Decode(data []byte) *LoadReport {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &LoadReport{Records: []RawRecord{}, Format: FormatEmpty}
	}

	if v, err := decodeDocument(data); err == nil {
		switch doc := v.(type) {
		case map[string]any:
			return &LoadReport{Records: []RawRecord{doc}, Format: FormatObject}
		case []any:
			records := make([]RawRecord, 0, len(doc))
			for _, item := range doc {
				records = append(records, toRecord(item))
			}
			return &LoadReport{Records: records, Format: FormatArray}
		default:
			return &LoadReport{Records: []RawRecord{}, Format: FormatScalar}
		}
	}

	return decodeLines(data)
}

// decodeDocument decodes data as exactly one JSON value.
func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}
	return v, nil
}

func decodeLines(data []byte) *LoadReport {
	report := &LoadReport{Records: []RawRecord{}, Format: FormatNDJSON}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), len(data)+1)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := decodeDocument(line)
		if err != nil {
			report.SkippedLines = append(report.SkippedLines, lineNo)
			continue
		}
		report.Records = append(report.Records, toRecord(v))
	}

	return report
}

func toRecord(v any) RawRecord {
	if m, ok := v.(map[string]any); ok {
		return RawRecord(m)
	}
	return RawRecord{}
}
