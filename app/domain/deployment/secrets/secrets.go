// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package secrets implements the deduplicated, TTL-bound secret cache
// sitting in front of the vault (ports.SecretsProvider).
package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/ports"
	"github.com/deploycache/deployment-service/app/types"
)

// sasPrefix marks a storage connection string as already fully formed;
// values already in this shape are returned verbatim.
const sasPrefix = "DefaultEndpointProtocol="

// Cache resolves named secrets through a SecretsProvider, deduplicating and
// caching each by (name, kind) for its configured TTL.
type Cache struct {
	cache *cache.VolatileMap[string, string]
}

// NewCache constructs an empty Cache using clock for TTL comparisons.
func NewCache(clock types.TimeProvider) *Cache {
	return &Cache{cache: cache.NewVolatileMap[string, string](clock)}
}

// Get resolves secret via provider, applying the SasToken connection-string
// wrapping rule when secret.Kind is SecretKindSasToken. Concurrent callers
// for the same (name, kind) observe a single provider call; on failure the
// cache entry is invalidated so the next caller retries.
func (c *Cache) Get(ctx context.Context, provider ports.SecretsProvider, secret model.SecretConfiguration) (string, error) {
	key := fmt.Sprintf("%s|%s", secret.Name, secret.Kind)
	ttl := time.Duration(secret.TimeToLive) * time.Second

	return cache.GetOrLoad(ctx, c.cache, key, ttl, func(ctx context.Context) (string, error) {
		if secret.Kind == model.SecretKindSasToken && !strings.HasSuffix(strings.ToLower(secret.Name), "-sas") {
			return "", errs.New(errs.Malformed, fmt.Sprintf("secret name %q must end in -sas for kind SasToken", secret.Name))
		}

		raw, err := provider.GetPlainSecret(ctx, secret.Name)
		if err != nil {
			return "", err
		}

		if secret.Kind != model.SecretKindSasToken {
			return raw, nil
		}

		if strings.HasPrefix(raw, sasPrefix) {
			return raw, nil
		}

		accountName := strings.TrimSuffix(strings.ToLower(secret.Name), "-sas")
		return fmt.Sprintf(
			"DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net",
			accountName, raw,
		), nil
	})
}
