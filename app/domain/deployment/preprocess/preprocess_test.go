// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocess_test

import (
	"testing"

	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/preprocess"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_Preprocess_SubstitutesKnownKeys(t *testing.T) {
	params := model.HostParameters{
		Machine:         "host-1",
		Stamp:           "stamp-a",
		Ring:            "ring-0",
		Environment:     "prod",
		ConfigurationID: "cfg-1",
		Properties:      map[string]string{"Region": "westus"},
	}

	out, err := preprocess.Preprocess(`{"machine":"{Machine}","region":"{Region}"}`, params)
	require.NoError(t, err)
	assert.Equal(t, `{"machine":"host-1","region":"westus"}`, out)
}

func TestUnit_Preprocess_Deterministic(t *testing.T) {
	params := model.HostParameters{Machine: "a", Stamp: "b"}
	a, err1 := preprocess.Preprocess("{Machine}-{Stamp}", params)
	b, err2 := preprocess.Preprocess("{Machine}-{Stamp}", params)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, a, b)
}

func TestUnit_Preprocess_UnresolvedTokenIsMalformed(t *testing.T) {
	_, err := preprocess.Preprocess("{Unknown}", model.HostParameters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.Malformed)
}

func TestUnit_Preprocess_UnterminatedTokenIsMalformed(t *testing.T) {
	_, err := preprocess.Preprocess("{Machine", model.HostParameters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.Malformed)
}

func TestUnit_Preprocess_NoTokensPassesThrough(t *testing.T) {
	out, err := preprocess.Preprocess(`plain text`, model.HostParameters{})
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}
