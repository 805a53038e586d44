// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package logging configures the service's structured logger.
package logging

import (
	"encoding/json"
	"io"
)

type fieldFilterWriter struct {
	w      io.Writer
	fields map[string]struct{}
}

// NewFieldFilterWriter returns a writer that drops the named top-level
// fields from every JSON log line before forwarding it to w. Lines that
// aren't a JSON object are forwarded unmodified.
func NewFieldFilterWriter(w io.Writer, fields []string) io.Writer {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &fieldFilterWriter{w: w, fields: set}
}

func (f *fieldFilterWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var entry map[string]json.RawMessage
	if err := json.Unmarshal(p, &entry); err != nil {
		return f.w.Write(p)
	}

	for name := range f.fields {
		delete(entry, name)
	}

	out, err := json.Marshal(entry)
	if err != nil {
		return f.w.Write(p)
	}

	// preserve a trailing newline, which json.Marshal never emits
	if p[len(p)-1] == '\n' {
		out = append(out, '\n')
	}

	if _, err := f.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
