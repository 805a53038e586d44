// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package storage_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploycache/deployment-service/app/domain/deployment/model"
	"github.com/deploycache/deployment-service/app/domain/deployment/ports"
	"github.com/deploycache/deployment-service/app/domain/deployment/secrets"
	"github.com/deploycache/deployment-service/app/domain/deployment/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) GetCurrentTime() time.Time { return c.now }

type stubProvider struct{}

func (stubProvider) GetPlainSecret(ctx context.Context, name string) (string, error) {
	return "raw-key", nil
}

type fakeStorage struct{ started int32 }

func (f *fakeStorage) Startup(ctx context.Context) error {
	atomic.AddInt32(&f.started, 1)
	return nil
}
func (f *fakeStorage) UploadFile(ctx context.Context, localPath, remotePath string) error { return nil }
func (f *fakeStorage) TryGetSasURL(ctx context.Context, remotePath string, expiry time.Time) (string, bool, error) {
	return "", false, nil
}

func TestUnit_Registry_Load_ConstructsAndStartsOnce(t *testing.T) {
	clock := fixedClock{now: time.Unix(0, 0)}
	secretCache := secrets.NewCache(clock)

	var constructed int32
	store := &fakeStorage{}
	registry := storage.NewRegistry(clock, secretCache, func(connectionString string) (ports.CentralStorage, error) {
		atomic.AddInt32(&constructed, 1)
		return store, nil
	})

	cfg := model.SecretConfiguration{Name: "mystorage-sas", TimeToLive: 60, Kind: model.SecretKindSasToken}

	s1, err := registry.Load(context.Background(), stubProvider{}, cfg)
	require.NoError(t, err)
	s2, err := registry.Load(context.Background(), stubProvider{}, cfg)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.started))
}
