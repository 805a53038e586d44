// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ports declares the external collaborators the deployment core is
// built against: the vault and the object store. Concrete adapters live
// under sibling secrets/ and storage/ adapter packages; this package only
// states the contract.
package ports

import (
	"context"
	"time"
)

// SecretsProvider resolves a named secret from an external vault.
type SecretsProvider interface {
	// GetPlainSecret returns the plain-text value of name. Implementations
	// fail with errs.NotFound, errs.Unauthorized, or errs.Transient.
	GetPlainSecret(ctx context.Context, name string) (string, error)
}

// CentralStorage abstracts the backing object store a set of deployment
// files is uploaded to and served from.
type CentralStorage interface {
	// Startup prepares the store for use (e.g. ensures its container
	// exists). Called once per StorageRegistry-cached instance.
	Startup(ctx context.Context) error

	// UploadFile uploads the local file at localPath to remotePath.
	UploadFile(ctx context.Context, localPath, remotePath string) error

	// TryGetSasURL returns a time-limited download URL for remotePath
	// valid until expiry. ok=false specifically means "object not
	// present"; any other failure is returned as err.
	TryGetSasURL(ctx context.Context, remotePath string, expiry time.Time) (url string, ok bool, err error)
}
