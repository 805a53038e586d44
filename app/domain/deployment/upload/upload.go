// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package upload implements at-most-once-per-epoch upload of a deployment
// file plus the SAS URL and access token minted for it.
package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/ports"
	"github.com/deploycache/deployment-service/app/domain/deployment/tokens"
	"github.com/deploycache/deployment-service/app/hashing"
	"github.com/deploycache/deployment-service/app/types"
	"github.com/deploycache/deployment-service/app/utils/parallel"
)

// Coordinator ensures each (storage account, content hash) pair is
// uploaded at most once per TTL epoch and mints a DownloadInfo for it,
// bounding total upload concurrency via an ActionQueue.
type Coordinator struct {
	clock          types.TimeProvider
	cache          *cache.VolatileMap[string, model.DownloadInfo]
	tokens         *tokens.Registry
	queue          *parallel.ActionQueue
	deploymentRoot string
}

// NewCoordinator constructs a Coordinator rooted at deploymentRoot, the
// directory local files are uploaded from.
func NewCoordinator(clock types.TimeProvider, tokenRegistry *tokens.Registry, queue *parallel.ActionQueue, deploymentRoot string) *Coordinator {
	return &Coordinator{
		clock:          clock,
		cache:          cache.NewVolatileMap[string, model.DownloadInfo](clock),
		tokens:         tokenRegistry,
		queue:          queue,
		deploymentRoot: deploymentRoot,
	}
}

// EnsureUploaded returns the DownloadInfo for file, uploading it through
// storage if no valid SAS URL for it already exists. The upload itself runs
// under the Coordinator's ActionQueue, bounding total concurrency
// independently of the (account, hash) dedup below.
func (c *Coordinator) EnsureUploaded(ctx context.Context, file model.FileSpec, config model.DeploymentConfiguration, storage ports.CentralStorage) (model.DownloadInfo, error) {
	key := fmt.Sprintf("%s|%s", config.AzureStorageSecretInfo.Name, file.Hash)
	ttl := time.Duration(config.SasURLTimeToLive) * time.Second

	return cache.GetOrLoad(ctx, c.cache, key, ttl, func(ctx context.Context) (model.DownloadInfo, error) {
		future := parallel.Run(c.queue, func() (model.DownloadInfo, error) {
			return c.upload(ctx, file, ttl, storage)
		})
		return future.Wait()
	})
}

func (c *Coordinator) upload(ctx context.Context, file model.FileSpec, ttl time.Duration, storage ports.CentralStorage) (model.DownloadInfo, error) {
	relativePath := hashing.ContentPath(file.Hash)
	expiry := c.clock.GetCurrentTime().Add(2 * ttl)

	downloadURL, ok, err := storage.TryGetSasURL(ctx, relativePath, expiry)
	if err != nil {
		return model.DownloadInfo{}, err
	}

	if !ok {
		localPath := filepath.Join(c.deploymentRoot, relativePath)
		if err := storage.UploadFile(ctx, localPath, relativePath); err != nil {
			return model.DownloadInfo{}, err
		}

		downloadURL, ok, err = storage.TryGetSasURL(ctx, relativePath, expiry)
		if err != nil {
			return model.DownloadInfo{}, err
		}
		if !ok {
			return model.DownloadInfo{}, errs.New(errs.Transient, fmt.Sprintf("object %s missing immediately after upload", relativePath))
		}
	}

	accessToken, err := randomHex(32)
	if err != nil {
		return model.DownloadInfo{}, errs.Wrap(errs.Fatal, "generate access token", err)
	}

	info := model.DownloadInfo{DownloadURL: downloadURL, AccessToken: accessToken}
	c.tokens.Register(accessToken, downloadURL, time.Duration(float64(ttl)*1.5))
	return info, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
