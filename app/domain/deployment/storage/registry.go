// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package storage caches one ports.CentralStorage handle per storage
// secret name, opening it lazily on first use.
package storage

import (
	"context"
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/ports"
	"github.com/deploycache/deployment-service/app/domain/deployment/secrets"
	"github.com/deploycache/deployment-service/app/types"
)

// Constructor builds a concrete CentralStorage from a resolved storage
// connection string. Production wiring supplies a constructor over
// miniostore.New (or an equivalent object-store adapter); tests can inject
// their own.
type Constructor func(connectionString string) (ports.CentralStorage, error)

// Registry opens and caches one CentralStorage per storage secret name.
type Registry struct {
	cache       *cache.VolatileMap[string, ports.CentralStorage]
	secrets     *secrets.Cache
	constructor Constructor
}

// NewRegistry constructs a Registry. constructor builds the concrete
// CentralStorage from the resolved connection-string secret value.
func NewRegistry(clock types.TimeProvider, secretCache *secrets.Cache, constructor Constructor) *Registry {
	return &Registry{
		cache:       cache.NewVolatileMap[string, ports.CentralStorage](clock),
		secrets:     secretCache,
		constructor: constructor,
	}
}

// Load returns the CentralStorage for storageSecret, resolving the secret
// and constructing + starting a fresh handle on cache miss.
func (r *Registry) Load(ctx context.Context, provider ports.SecretsProvider, storageSecret model.SecretConfiguration) (ports.CentralStorage, error) {
	ttl := time.Duration(storageSecret.TimeToLive) * time.Second

	return cache.GetOrLoad(ctx, r.cache, storageSecret.Name, ttl, func(ctx context.Context) (ports.CentralStorage, error) {
		connectionString, err := r.secrets.Get(ctx, provider, storageSecret)
		if err != nil {
			return nil, err
		}

		store, err := r.constructor(connectionString)
		if err != nil {
			return nil, err
		}

		if err := store.Startup(ctx); err != nil {
			return nil, err
		}

		return store, nil
	})
}
