// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package upload_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/tokens"
	"github.com/deploycache/deployment-service/app/domain/deployment/upload"
	"github.com/deploycache/deployment-service/app/utils/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) GetCurrentTime() time.Time { return c.now }

type fakeStorage struct {
	mu         sync.Mutex
	present    map[string]bool
	uploads    int32
	sasLookups int32
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{present: make(map[string]bool)}
}

func (f *fakeStorage) Startup(ctx context.Context) error { return nil }

func (f *fakeStorage) UploadFile(ctx context.Context, localPath, remotePath string) error {
	atomic.AddInt32(&f.uploads, 1)
	f.mu.Lock()
	f.present[remotePath] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStorage) TryGetSasURL(ctx context.Context, remotePath string, expiry time.Time) (string, bool, error) {
	atomic.AddInt32(&f.sasLookups, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.present[remotePath] {
		return "", false, nil
	}
	return "https://store/" + remotePath, true, nil
}

func TestUnit_Coordinator_UploadsOnceThenReusesSasURL(t *testing.T) {
	clock := fixedClock{now: time.Unix(0, 0)}
	registry := tokens.NewRegistry(clock)
	queue := parallel.NewActionQueue(4)
	store := newFakeStorage()
	root := t.TempDir()

	coord := upload.NewCoordinator(clock, registry, queue, root)
	config := model.DeploymentConfiguration{
		AzureStorageSecretInfo: model.SecretConfiguration{Name: "mystorage-sas"},
		SasURLTimeToLive:       60,
	}
	file := model.FileSpec{Hash: "abcd1234abcd5678", Size: 10}

	info, err := coord.EnsureUploaded(context.Background(), file, config, store)
	require.NoError(t, err)
	assert.NotEmpty(t, info.DownloadURL)
	assert.Len(t, info.AccessToken, 32)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.uploads))

	info2, err := coord.EnsureUploaded(context.Background(), file, config, store)
	require.NoError(t, err)
	assert.Equal(t, info.DownloadURL, info2.DownloadURL)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.uploads))
}

func TestUnit_Coordinator_RegistersTokenForDownloadURL(t *testing.T) {
	clock := fixedClock{now: time.Unix(0, 0)}
	registry := tokens.NewRegistry(clock)
	queue := parallel.NewActionQueue(2)
	store := newFakeStorage()
	root := t.TempDir()

	coord := upload.NewCoordinator(clock, registry, queue, root)
	config := model.DeploymentConfiguration{
		AzureStorageSecretInfo: model.SecretConfiguration{Name: "mystorage-sas"},
		SasURLTimeToLive:       60,
	}
	file := model.FileSpec{Hash: "deadbeefdeadbeef", Size: 1}

	info, err := coord.EnsureUploaded(context.Background(), file, config, store)
	require.NoError(t, err)

	url, err := registry.TryGetDownloadURL(info.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, info.DownloadURL, url)
}

func TestUnit_Coordinator_DeduplicatesConcurrentCallers(t *testing.T) {
	clock := fixedClock{now: time.Unix(0, 0)}
	registry := tokens.NewRegistry(clock)
	queue := parallel.NewActionQueue(4)
	store := newFakeStorage()
	root := t.TempDir()

	coord := upload.NewCoordinator(clock, registry, queue, root)
	config := model.DeploymentConfiguration{
		AzureStorageSecretInfo: model.SecretConfiguration{Name: "mystorage-sas"},
		SasURLTimeToLive:       60,
	}
	file := model.FileSpec{Hash: "1111222233334444", Size: 1}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coord.EnsureUploaded(context.Background(), file, config, store)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&store.uploads))
}
