// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package miniostore adapts a MinIO (S3-compatible) bucket to the
// ports.CentralStorage contract the deployment core is built against.
package miniostore

import (
	"context"
	"fmt"
	"time"

	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// containerName is the fixed container every StorageRegistry-opened
// CentralStorage is bound to, per the deployment-files layout contract.
const containerName = "deploymentfiles"

// Store is a ports.CentralStorage backed by a MinIO client.
type Store struct {
	client *minio.Client
	bucket string
}

// Config names the MinIO endpoint and credentials a Store connects to. The
// credential value is expected to already carry account name/key — the
// format SecretCache produces for kind SasToken.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// New constructs a Store. It does not contact the endpoint; call Startup
// before use.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "construct minio client", err)
	}

	return &Store{client: client, bucket: containerName}, nil
}

// Startup ensures the bucket backing this Store exists.
func (s *Store) Startup(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errs.Wrap(errs.Transient, fmt.Sprintf("check bucket %s", s.bucket), err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errs.Wrap(errs.Transient, fmt.Sprintf("create bucket %s", s.bucket), err)
	}
	return nil
}

// UploadFile uploads the local file at localPath to remotePath within the
// bucket.
func (s *Store) UploadFile(ctx context.Context, localPath, remotePath string) error {
	if _, err := s.client.FPutObject(ctx, s.bucket, remotePath, localPath, minio.PutObjectOptions{}); err != nil {
		return errs.Wrap(errs.Transient, fmt.Sprintf("upload %s to %s", localPath, remotePath), err)
	}
	return nil
}

// TryGetSasURL returns a presigned GET URL for remotePath valid until
// expiry. A minio "object does not exist" style error is reported as
// ok=false rather than as err.
func (s *Store) TryGetSasURL(ctx context.Context, remotePath string, expiry time.Time) (string, bool, error) {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return "", false, errs.New(errs.Malformed, "requested SAS expiry is in the past")
	}

	if _, err := s.client.StatObject(ctx, s.bucket, remotePath, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, errs.Wrap(errs.Transient, fmt.Sprintf("stat %s", remotePath), err)
	}

	url, err := s.client.PresignedGetObject(ctx, s.bucket, remotePath, ttl, nil)
	if err != nil {
		return "", false, errs.Wrap(errs.Transient, fmt.Sprintf("presign %s", remotePath), err)
	}
	return url.String(), true, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
