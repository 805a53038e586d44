// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package deployment is the facade orchestrating the manifest, secret,
// storage, upload, token, and proxy layers into the four operations the
// transport layer publishes: IsAuthorized, UploadFilesAndGetManifest,
// GetProxyBaseAddress, and TryGetDownloadUrl.
package deployment

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/manifest"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/ports"
	"github.com/deploycache/deployment-service/app/domain/deployment/proxy"
	"github.com/deploycache/deployment-service/app/domain/deployment/secrets"
	"github.com/deploycache/deployment-service/app/domain/deployment/storage"
	"github.com/deploycache/deployment-service/app/domain/deployment/tokens"
	"github.com/deploycache/deployment-service/app/domain/deployment/upload"
	"github.com/deploycache/deployment-service/app/hashing"
)

// Service is the process-wide deployment core. All of its fields are
// themselves process-wide caches, populated lazily; Service holds no
// per-request state.
type Service struct {
	manifestLoader    *manifest.Loader
	secretCache       *secrets.Cache
	storageRegistry   *storage.Registry
	uploadCoordinator *upload.Coordinator
	tokenRegistry     *tokens.Registry
	proxyManager      *proxy.Manager
	secretsProvider   ports.SecretsProvider
}

// NewService wires the deployment core's components together. Callers
// supply the already-constructed shared instances (loader, caches,
// coordinator) so the transport binary controls their lifetimes and
// configuration.
func NewService(
	manifestLoader *manifest.Loader,
	secretCache *secrets.Cache,
	storageRegistry *storage.Registry,
	uploadCoordinator *upload.Coordinator,
	tokenRegistry *tokens.Registry,
	proxyManager *proxy.Manager,
	secretsProvider ports.SecretsProvider,
) *Service {
	return &Service{
		manifestLoader:    manifestLoader,
		secretCache:       secretCache,
		storageRegistry:   storageRegistry,
		uploadCoordinator: uploadCoordinator,
		tokenRegistry:     tokenRegistry,
		proxyManager:      proxyManager,
		secretsProvider:   secretsProvider,
	}
}

// IsAuthorized reports whether params carries a whitelisted secret name and
// a value matching the vault-resolved secret, without leaking which check
// failed.
func (s *Service) IsAuthorized(ctx context.Context, params model.DeploymentParameters) bool {
	_, config, _, err := s.manifestLoader.Load(ctx, params.HostParameters)
	if err != nil {
		return false
	}

	whitelisted := false
	for _, name := range config.AuthorizationSecretNames {
		if name == params.AuthorizationSecretName {
			whitelisted = true
			break
		}
	}
	if !whitelisted {
		return false
	}

	resolved, err := s.secretCache.Get(ctx, s.secretsProvider, model.SecretConfiguration{
		Name:       params.AuthorizationSecretName,
		TimeToLive: config.AuthorizationSecretTimeToLive,
		Kind:       model.SecretKindPlainText,
	})
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(resolved), []byte(params.AuthorizationSecret)) == 1
}

// fileJob is one (file, target path) pair awaiting resolution into a final
// FileSpec for the returned LauncherManifest.
type fileJob struct {
	targetPath string
	spec       model.FileSpec
}

// UploadFilesAndGetManifest ensures every file a caller's drops reference
// is uploaded (unless params.GetContentInfoOnly suppresses it) and returns
// the resulting LauncherManifest. With waitForCompletion, every entry's
// DownloadURL is populated before return; otherwise the manifest reflects
// whatever has completed so far and IsComplete tells the caller to poll.
func (s *Service) UploadFilesAndGetManifest(ctx context.Context, params model.DeploymentParameters, waitForCompletion bool) (model.LauncherManifest, error) {
	manifestData, config, contentID, err := s.manifestLoader.Load(ctx, params.HostParameters)
	if err != nil {
		return model.LauncherManifest{}, err
	}

	envVars := make(map[string]string, len(config.Tool.EnvironmentVariables))
	for k, v := range config.Tool.EnvironmentVariables {
		envVars[k] = v
	}

	for key, secretCfg := range config.Tool.SecretEnvironmentVariables {
		name := secretCfg.Name
		if name == "" {
			name = key
		}
		secretCfg.Name = name

		value, err := s.secretCache.Get(ctx, s.secretsProvider, secretCfg)
		if err != nil {
			return model.LauncherManifest{}, err
		}
		envVars[key] = value

		if secretCfg.Kind == model.SecretKindSasToken {
			envVars[key+"_ResourceType"] = "storagekey"
		}
	}

	if len(config.Tool.SecretEnvironmentVariables) > 0 {
		envJSON, err := json.Marshal(envVars)
		if err != nil {
			return model.LauncherManifest{}, errs.Wrap(errs.Fatal, "encode environment variables", err)
		}
		contentID += "_" + hashing.Sum(envJSON)
	}

	var centralStorage ports.CentralStorage
	if !params.GetContentInfoOnly {
		centralStorage, err = s.storageRegistry.Load(ctx, s.secretsProvider, config.AzureStorageSecretInfo)
		if err != nil {
			return model.LauncherManifest{}, err
		}
	}

	proxyBase := s.proxyManager.GetBaseAddress(params.HostParameters, config.Proxy)

	jobs := s.buildFileJobs(manifestData, config)

	deployment := make(map[string]model.FileSpec, len(jobs))
	pending := 0

	var wg sync.WaitGroup
	var mu sync.Mutex
	firstErr := make(chan error, len(jobs))

	for _, job := range jobs {
		job := job
		if params.GetContentInfoOnly {
			spec := job.spec
			spec.DownloadURL = nil
			mu.Lock()
			deployment[job.targetPath] = spec
			mu.Unlock()
			continue
		}

		pending++
		wg.Add(1)
		go func() {
			defer wg.Done()

			info, err := s.uploadCoordinator.EnsureUploaded(ctx, job.spec, config, centralStorage)
			if err != nil {
				firstErr <- err
				return
			}

			finalURL := info.DownloadURL
			if proxyBase != nil {
				finalURL = fmt.Sprintf("%scontent?hash=%s&token=%s", *proxyBase, job.spec.Hash, info.AccessToken)
			}
			spec := job.spec
			spec.DownloadURL = &finalURL

			mu.Lock()
			deployment[job.targetPath] = spec
			mu.Unlock()
		}()
	}

	if waitForCompletion {
		wg.Wait()
		close(firstErr)
		for err := range firstErr {
			if err != nil {
				return model.LauncherManifest{}, err
			}
		}
		pending = 0
	} else {
		go func() {
			wg.Wait()
			close(firstErr)
		}()
	}

	// Snapshot deployment under its lock before returning it: on the
	// waitForCompletion=false path, upload goroutines keep writing to
	// deployment after this call returns, and the caller (typically an
	// HTTP handler marshalling the response) must never read that same
	// live map concurrently.
	mu.Lock()
	snapshot := make(map[string]model.FileSpec, len(deployment))
	for k, v := range deployment {
		snapshot[k] = v
	}
	mu.Unlock()

	return model.LauncherManifest{
		ContentID:  contentID,
		Tool:       config.Tool,
		Drops:      config.Drops,
		Deployment: snapshot,
		IsComplete: pending == 0,
	}, nil
}

// buildFileJobs enumerates the (FileSpec, targetPath) pairs this request
// must resolve: one per file under every drop the caller's configuration
// references, plus the configuration file itself when a proxy is
// configured.
func (s *Service) buildFileJobs(manifestData model.DeploymentManifest, config model.DeploymentConfiguration) []fileJob {
	var jobs []fileJob

	for _, drop := range config.Drops {
		if drop.URL == "" {
			continue
		}
		for name, spec := range manifestData.Drops[drop.URL] {
			jobs = append(jobs, fileJob{
				targetPath: path.Join(drop.TargetRelativePath, name),
				spec:       spec,
			})
		}
	}

	if config.Proxy != nil {
		jobs = append(jobs, fileJob{
			targetPath: config.Proxy.TargetRelativePath,
			spec:       manifestData.ConfigurationFile,
		})
	}

	return jobs
}

// TryGetDownloadUrl resolves a proxied access token back to its real
// download URL.
func (s *Service) TryGetDownloadUrl(token string) (string, error) {
	return s.tokenRegistry.TryGetDownloadURL(token)
}

// GetProxyBaseAddress returns the proxy base URL params.Machine must use,
// or nil if it should talk to the object store directly.
func (s *Service) GetProxyBaseAddress(ctx context.Context, params model.HostParameters) (*string, error) {
	_, config, _, err := s.manifestLoader.Load(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.proxyManager.GetBaseAddress(params, config.Proxy), nil
}
