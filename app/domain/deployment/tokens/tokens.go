// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tokens maps short-lived access tokens to the real signed
// download URL they stand in for, so a peer proxy never has to see the
// backing storage credentials.
package tokens

import (
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/types"
)

// Registry is a VolatileMap<string,string> from access token to signed
// download URL.
type Registry struct {
	cache *cache.VolatileMap[string, string]
}

// NewRegistry constructs an empty Registry.
func NewRegistry(clock types.TimeProvider) *Registry {
	return &Registry{cache: cache.NewVolatileMap[string, string](clock)}
}

// Register installs downloadURL under accessToken for ttl.
func (r *Registry) Register(accessToken, downloadURL string, ttl time.Duration) {
	r.cache.TryAdd(accessToken, downloadURL, ttl)
}

// TryGetDownloadURL returns the download URL for accessToken. An unknown or
// expired token reports errs.Unauthorized rather than errs.NotFound, to
// avoid leaking which tokens ever existed.
func (r *Registry) TryGetDownloadURL(accessToken string) (string, error) {
	url, ok := r.cache.TryGet(accessToken)
	if !ok {
		return "", errs.Unauthorized
	}
	return url, nil
}
