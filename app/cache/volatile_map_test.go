// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *fakeClock) GetCurrentTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestUnit_VolatileMap_TryAdd_InstallsOnce(t *testing.T) {
	clk := newFakeClock()
	m := cache.NewVolatileMap[string, int](clk)

	assert.True(t, m.TryAdd("k", 1, time.Minute))
	assert.False(t, m.TryAdd("k", 2, time.Minute))

	v, ok := m.TryGet("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestUnit_VolatileMap_TryGet_ExpiredIsAbsent(t *testing.T) {
	clk := newFakeClock()
	m := cache.NewVolatileMap[string, int](clk)

	m.TryAdd("k", 1, time.Minute)
	clk.Advance(2 * time.Minute)

	_, ok := m.TryGet("k")
	assert.False(t, ok)
}

func TestUnit_VolatileMap_TryAdd_ReplacesExpiredEntry(t *testing.T) {
	clk := newFakeClock()
	m := cache.NewVolatileMap[string, int](clk)

	m.TryAdd("k", 1, time.Minute)
	clk.Advance(2 * time.Minute)

	assert.True(t, m.TryAdd("k", 2, time.Minute))
	v, ok := m.TryGet("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestUnit_VolatileMap_Invalidate(t *testing.T) {
	clk := newFakeClock()
	m := cache.NewVolatileMap[string, int](clk)

	m.TryAdd("k", 1, time.Minute)
	m.Invalidate("k")

	_, ok := m.TryGet("k")
	assert.False(t, ok)
}

func TestUnit_GetOrLoad_DeduplicatesConcurrentProducers(t *testing.T) {
	clk := newFakeClock()
	m := cache.NewVolatileMap[string, int](clk)

	var calls int32
	producer := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.GetOrLoad(context.Background(), m, "k", time.Minute, producer)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestUnit_GetOrLoad_InvalidatesOnFailure(t *testing.T) {
	clk := newFakeClock()
	m := cache.NewVolatileMap[string, int](clk)

	boom := errors.New("boom")
	_, err := cache.GetOrLoad(context.Background(), m, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	// a subsequent call retries instead of observing a permanently failed entry.
	v, err := cache.GetOrLoad(context.Background(), m, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
