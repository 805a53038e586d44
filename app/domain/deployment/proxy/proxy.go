// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package proxy implements the deterministic fan-out assignment of caller
// machines to peer proxies, rooted at a configurable number of seeds that
// talk to the object store directly.
package proxy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/types"
)

// topology tracks the machines discovered for one (stamp, domain) epoch, in
// insertion order, each assigned a stable zero-based index.
type topology struct {
	mu      sync.Mutex
	index   map[string]int
	order   []string
}

func newTopology() *topology {
	return &topology{index: make(map[string]int)}
}

// indexOf returns machine's stable index, assigning the next one if this is
// the first time machine is observed this epoch.
func (t *topology) indexOf(machine string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.index[machine]; ok {
		return i
	}
	i := len(t.order)
	t.index[machine] = i
	t.order = append(t.order, machine)
	return i
}

func (t *topology) machineAt(i int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order[i]
}

// Manager assigns caller machines to either no proxy (seeds) or a
// cohort-bounded random peer, per topology epoch.
type Manager struct {
	topologies *cache.VolatileMap[string, *topology]
}

// NewManager constructs an empty Manager.
func NewManager(clock types.TimeProvider) *Manager {
	return &Manager{topologies: cache.NewVolatileMap[string, *topology](clock)}
}

// GetBaseAddress returns the proxy base URL a caller must use, or nil if
// the caller should talk to the object store directly (it is a seed, or no
// proxy is configured).
func (m *Manager) GetBaseAddress(params model.HostParameters, cfg *model.ProxyConfiguration) *string {
	if cfg == nil {
		return nil
	}

	epochKey := fmt.Sprintf("%s|%s", params.Stamp, cfg.Domain)
	ttl := time.Duration(cfg.ServiceConfiguration.ProxyAddressTimeToLive) * time.Second

	top, err := cache.GetOrLoad(context.Background(), m.topologies, epochKey, ttl, func(ctx context.Context) (*topology, error) {
		return newTopology(), nil
	})
	if err != nil {
		// newTopology never fails; this path is unreachable.
		return nil
	}

	index := top.indexOf(params.Machine)
	if index < cfg.Seeds {
		return nil
	}

	lo := index / cfg.FanOutFactor
	hi := min(index, lo+cfg.FanOutFactor)
	if hi == lo {
		// Degenerate cohort (e.g. seeds=0, fanOutFactor=1 assigns every
		// non-seed to itself): fall back to the service's own address
		// instead of silently letting the caller bypass proxying.
		return getDefaultBaseAddress(cfg)
	}

	proxyIndex := lo + rand.IntN(hi-lo)
	address := normalizeBaseAddress(fmt.Sprintf("http://%s:%d", top.machineAt(proxyIndex), cfg.ServiceConfiguration.Port))
	return &address
}

// getDefaultBaseAddress returns the deployment service's own address, used
// when a non-seed machine's cohort is degenerate and it has no peer to draw
// from.
func getDefaultBaseAddress(cfg *model.ProxyConfiguration) *string {
	if cfg.ServiceConfiguration.DeploymentServiceURL == "" {
		return nil
	}
	address := normalizeBaseAddress(cfg.ServiceConfiguration.DeploymentServiceURL)
	return &address
}

// normalizeBaseAddress ensures a base address ends in exactly one trailing
// slash, so callers appending "content?..." never produce a double slash.
func normalizeBaseAddress(address string) string {
	return strings.TrimRight(address, "/") + "/"
}
