// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package preprocess implements the pure, deterministic textual
// substitution applied to a raw configuration document before it is
// parsed into a DeploymentConfiguration.
package preprocess

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
)

// Preprocess substitutes every `{Key}` placeholder in raw with the
// corresponding value from params, plus any caller-supplied property under
// params.Properties. It fails with errs.Malformed if a placeholder has no
// known substitution, or if a '{' has no closing '}' after it. A '{' whose
// text up to the next '}' is not a name (letters, digits, '_', '-', '.'),
// such as the brace of a JSON object, is copied through unchanged.
func Preprocess(raw string, params model.HostParameters) (string, error) {
	substitutions := map[string]string{
		"Stamp":           params.Stamp,
		"Machine":         params.Machine,
		"Ring":            params.Ring,
		"Environment":     params.Environment,
		"ConfigurationId": params.ConfigurationID,
	}
	for k, v := range params.Properties {
		substitutions[k] = v
	}

	var out strings.Builder
	out.Grow(len(raw))

	for i := 0; i < len(raw); {
		if raw[i] != '{' {
			out.WriteByte(raw[i])
			i++
			continue
		}

		end := strings.IndexByte(raw[i:], '}')
		if end < 0 {
			return "", errs.New(errs.Malformed, fmt.Sprintf("unterminated preprocessor token starting at byte %d", i))
		}
		key := raw[i+1 : i+end]

		if key == "" || strings.ContainsFunc(key, func(r rune) bool {
			return !(r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r))
		}) {
			out.WriteByte(raw[i])
			i++
			continue
		}

		value, ok := substitutions[key]
		if !ok {
			return "", errs.New(errs.Malformed, fmt.Sprintf("unresolved preprocessor token %q", key))
		}

		out.WriteString(value)
		i += end + 1
	}

	return out.String(), nil
}
