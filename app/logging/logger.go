// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Option configures a logger built by NewLogger.
type Option func(*options)

type options struct {
	level       string
	writer      io.Writer
	redactKeys  []string
	console     bool
}

// WithLevel sets the minimum level the logger emits, e.g. "debug", "info".
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithWriter overrides the destination of log lines. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithRedactedFields drops the named top-level fields from every log line
// before it is written, via NewFieldFilterWriter.
func WithRedactedFields(fields ...string) Option {
	return func(o *options) { o.redactKeys = fields }
}

// WithConsole renders logs as human-readable text instead of JSON.
func WithConsole() Option {
	return func(o *options) { o.console = true }
}

// NewLogger builds a zerolog.Logger per the supplied options.
func NewLogger(opts ...Option) (zerolog.Logger, error) {
	o := &options{level: "info", writer: os.Stderr}
	for _, apply := range opts {
		apply(o)
	}

	level, err := zerolog.ParseLevel(o.level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", o.level, err)
	}

	var w io.Writer = o.writer
	if o.console {
		w = zerolog.ConsoleWriter{Out: w}
	}
	if len(o.redactKeys) > 0 {
		w = NewFieldFilterWriter(w, o.redactKeys)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
