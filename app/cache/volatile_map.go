// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cache provides an expirable, deduplicated memoization layer used
// to avoid repeating expensive external calls (vault lookups, SAS URL
// minting, storage-account handles) across concurrent, repeatedly-polling
// callers.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/deploycache/deployment-service/app/types"
	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// VolatileMap is a concurrent map where every entry carries an absolute
// expiry. Expired entries are treated as absent by readers and are
// opportunistically swept on write. It is the expirable-memoization
// primitive every cache in this package is built on (spec §4.3).
type VolatileMap[K comparable, V any] struct {
	clock types.TimeProvider

	mu    sync.Mutex
	items map[K]entry[V]

	group singleflight.Group
}

// NewVolatileMap constructs an empty VolatileMap using clock for expiry
// comparisons.
func NewVolatileMap[K comparable, V any](clock types.TimeProvider) *VolatileMap[K, V] {
	return &VolatileMap[K, V]{
		clock: clock,
		items: make(map[K]entry[V]),
	}
}

// TryGet returns the value for key if present and unexpired.
func (m *VolatileMap[K, V]) TryGet(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || !e.expiresAt.After(m.clock.GetCurrentTime()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// TryAdd inserts value under key with the given ttl if the key is absent or
// its current entry has expired. It reports whether this call installed the
// value.
func (m *VolatileMap[K, V]) TryAdd(key K, value V, ttl time.Duration) bool {
	now := m.clock.GetCurrentTime()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(now)

	if e, ok := m.items[key]; ok && e.expiresAt.After(now) {
		return false
	}

	m.items[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}
	return true
}

// Invalidate forces immediate expiry of key's entry, if present.
func (m *VolatileMap[K, V]) Invalidate(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// sweepLocked drops a bounded number of expired entries. It is called with
// mu held, opportunistically, on every write; it is not a substitute for a
// background evictor and does not guarantee the map shrinks promptly after
// a burst of expiries with no further writes.
func (m *VolatileMap[K, V]) sweepLocked(now time.Time) {
	const maxSwept = 32
	swept := 0
	for k, e := range m.items {
		if swept >= maxSwept {
			return
		}
		if !e.expiresAt.After(now) {
			delete(m.items, k)
			swept++
		}
	}
}

// KeyString is implemented by any key type GetOrLoad can turn into a
// singleflight key. Callers of GetOrLoad on non-string-keyed maps should
// format their own key and call GetOrLoad with that.
type KeyString interface {
	~string
}

// GetOrLoad implements the get-or-install idiom of spec §5: read; on miss,
// run produce with concurrent callers for the same key deduplicated via a
// singleflight.Group; install the result with ttl; invalidate the entry (so
// the next caller retries) if produce fails. The singleflight call itself
// is forgotten as soon as it returns — durability across calls comes from
// the VolatileMap, not from the flight group.
func GetOrLoad[K KeyString, V any](
	ctx context.Context,
	m *VolatileMap[K, V],
	key K,
	ttl time.Duration,
	produce func(ctx context.Context) (V, error),
) (V, error) {
	if v, ok := m.TryGet(key); ok {
		return v, nil
	}

	res, err, _ := m.group.Do(string(key), func() (any, error) {
		// re-check: another goroutine may have installed the value while we
		// waited to enter Do.
		if v, ok := m.TryGet(key); ok {
			return v, nil
		}

		v, err := produce(ctx)
		if err != nil {
			m.Invalidate(key)
			return nil, err
		}

		m.TryAdd(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
