// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads the on-disk deployment manifest and its referenced
// configuration blob, preprocesses the configuration for one caller, and
// derives the caller's content id.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deploycache/deployment-service/app/cache"
	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/preprocess"
	"github.com/deploycache/deployment-service/app/hashing"
	"github.com/deploycache/deployment-service/app/types"
)

const cacheTTL = 5 * time.Minute

// cacheKey is the single key the read-through cache is stored under: this
// loader caches one deployment root's manifest + raw config text.
const cacheKey = "manifest"

// onDisk is the JSON shape of DeploymentManifest.json.
type onDisk struct {
	Drops             map[string]map[string]model.FileSpec `json:"drops"`
	ConfigurationHash string                                `json:"configurationHash"`
}

type loaded struct {
	manifest      model.DeploymentManifest
	rawConfigJSON string
}

// Loader reads a deployment root, caching the parsed manifest and raw
// configuration text for cacheTTL and preprocessing + deserializing the
// configuration fresh for every caller.
type Loader struct {
	root  string
	cache *cache.VolatileMap[string, loaded]
}

// NewLoader constructs a Loader rooted at root.
func NewLoader(root string, clock types.TimeProvider) *Loader {
	return &Loader{
		root:  root,
		cache: cache.NewVolatileMap[string, loaded](clock),
	}
}

// Load returns the deployment manifest, this caller's preprocessed
// configuration, and its content id. Missing files, malformed JSON, and
// unresolved preprocessor tokens are reported as errs.NotFound /
// errs.Malformed respectively and are fatal for the calling request.
func (l *Loader) Load(ctx context.Context, params model.HostParameters) (model.DeploymentManifest, model.DeploymentConfiguration, string, error) {
	data, err := cache.GetOrLoad(ctx, l.cache, cacheKey, cacheTTL, l.readFromDisk)
	if err != nil {
		return model.DeploymentManifest{}, model.DeploymentConfiguration{}, "", err
	}

	preprocessed, err := preprocess.Preprocess(data.rawConfigJSON, params)
	if err != nil {
		return model.DeploymentManifest{}, model.DeploymentConfiguration{}, "", err
	}

	contentID := hashing.Sum([]byte(preprocessed))

	var config model.DeploymentConfiguration
	if err := json.Unmarshal([]byte(preprocessed), &config); err != nil {
		return model.DeploymentManifest{}, model.DeploymentConfiguration{}, "", errs.Wrap(errs.Malformed, "parse deployment configuration", err)
	}

	return data.manifest, config, contentID, nil
}

func (l *Loader) readFromDisk(ctx context.Context) (loaded, error) {
	manifestPath := filepath.Join(l.root, "DeploymentManifest.json")
	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return loaded{}, errs.Wrap(errs.NotFound, fmt.Sprintf("deployment manifest %s", manifestPath), err)
		}
		return loaded{}, errs.Wrap(errs.Transient, fmt.Sprintf("read deployment manifest %s", manifestPath), err)
	}

	var disk onDisk
	if err := json.Unmarshal(manifestBytes, &disk); err != nil {
		return loaded{}, errs.Wrap(errs.Malformed, "parse deployment manifest", err)
	}

	configPath := filepath.Join(l.root, hashing.ContentPath(disk.ConfigurationHash))
	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return loaded{}, errs.Wrap(errs.NotFound, fmt.Sprintf("deployment configuration %s", configPath), err)
		}
		return loaded{}, errs.Wrap(errs.Transient, fmt.Sprintf("read deployment configuration %s", configPath), err)
	}

	return loaded{
		manifest: model.DeploymentManifest{
			Drops: disk.Drops,
			ConfigurationFile: model.FileSpec{
				Hash: disk.ConfigurationHash,
				Size: int64(len(configBytes)),
			},
		},
		rawConfigJSON: string(configBytes),
	}, nil
}
