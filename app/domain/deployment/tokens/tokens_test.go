// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tokens_test

import (
	"testing"
	"time"

	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) GetCurrentTime() time.Time { return c.now }

func TestUnit_TokenRegistry_RegisterThenGet(t *testing.T) {
	clk := &fixedClock{now: time.Unix(0, 0)}
	r := tokens.NewRegistry(clk)

	r.Register("tok-1", "https://store/object", time.Minute)

	url, err := r.TryGetDownloadURL("tok-1")
	require.NoError(t, err)
	assert.Equal(t, "https://store/object", url)
}

func TestUnit_TokenRegistry_UnknownTokenIsUnauthorized(t *testing.T) {
	clk := &fixedClock{now: time.Unix(0, 0)}
	r := tokens.NewRegistry(clk)

	_, err := r.TryGetDownloadURL("missing")
	assert.ErrorIs(t, err, errs.Unauthorized)
}

func TestUnit_TokenRegistry_ExpiredTokenIsUnauthorizedNotNotFound(t *testing.T) {
	clk := &fixedClock{now: time.Unix(0, 0)}
	r := tokens.NewRegistry(clk)

	r.Register("tok-1", "https://store/object", time.Minute)
	clk.now = clk.now.Add(2 * time.Minute)

	_, err := r.TryGetDownloadURL("tok-1")
	assert.ErrorIs(t, err, errs.Unauthorized)
	assert.NotErrorIs(t, err, errs.NotFound)
}
