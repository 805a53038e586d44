// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package hashing_test

import (
	"testing"

	"github.com/deploycache/deployment-service/app/hashing"
	"github.com/stretchr/testify/assert"
)

func TestUnit_Hashing_Sum_Deterministic(t *testing.T) {
	data := []byte(`{"tool":{"command":"run.exe"}}`)
	assert.Equal(t, hashing.Sum(data), hashing.Sum(data))
}

func TestUnit_Hashing_Sum_Length(t *testing.T) {
	assert.Len(t, hashing.Sum([]byte("x")), 16)
	assert.Len(t, hashing.Sum([]byte("")), 16)
}

func TestUnit_Hashing_Sum_DifferentInputsDiffer(t *testing.T) {
	assert.NotEqual(t, hashing.Sum([]byte("a")), hashing.Sum([]byte("b")))
}

func TestUnit_Hashing_Shard(t *testing.T) {
	assert.Equal(t, "ab", hashing.Shard("ab1234567890"))
	assert.Equal(t, "a", hashing.Shard("a"))
}
