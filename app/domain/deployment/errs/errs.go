// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package errs defines the structured error taxonomy shared by every layer
// of the deployment core, so callers can branch on kind rather than on
// string matching.
package errs

import "fmt"

// Kind is one of the sentinel error kinds below. A Kind value is itself a
// valid error and is returned unwrapped by code that has no further detail
// to add.
type Kind string

const (
	// Unauthorized marks a bad or absent auth secret, or an unknown
	// download token.
	Unauthorized Kind = "unauthorized"
	// NotFound marks a missing deployment manifest or configuration file.
	NotFound Kind = "not_found"
	// Malformed marks a JSON parse failure, an unresolved preprocessor
	// token, or a secret-name convention violation.
	Malformed Kind = "malformed"
	// Transient marks a vault/storage/IO failure a retry could overcome.
	// The enclosing cache invalidates the offending entry so the next
	// caller retries.
	Transient Kind = "transient"
	// Fatal marks a violated programming invariant.
	Fatal Kind = "fatal"
)

func (k Kind) Error() string {
	return string(k)
}

// wrapped pairs a Kind with additional context while staying comparable via
// errors.Is against the bare Kind.
type wrapped struct {
	kind Kind
	msg  string
	err  error
}

func (w *wrapped) Error() string {
	if w.err != nil {
		return fmt.Sprintf("%s: %s: %v", w.kind, w.msg, w.err)
	}
	return fmt.Sprintf("%s: %s", w.kind, w.msg)
}

func (w *wrapped) Unwrap() error { return w.err }

// New builds an error of the given kind carrying msg.
func New(kind Kind, msg string) error {
	return &wrapped{kind: kind, msg: msg}
}

// Wrap builds an error of the given kind carrying msg and wrapping cause.
// errors.Is against both kind and cause succeeds.
func Wrap(kind Kind, msg string, cause error) error {
	return &wrapped{kind: kind, msg: msg, err: cause}
}

func (w *wrapped) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return w.kind == k
	}
	return false
}
