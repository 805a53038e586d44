// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package model holds the data types shared across the deployment core:
// caller-supplied parameters, the on-disk manifest shape, the derived
// per-caller configuration, and the manifest returned to callers.
package model

import "encoding/json"

// HostParameters identifies a caller and supplies the values the
// configuration preprocessor substitutes into the raw configuration text.
// Never mutated after construction; equality is field-by-field.
type HostParameters struct {
	Machine         string
	Stamp           string
	Ring            string
	Environment     string
	ConfigurationID string
	Properties      map[string]string
}

// DeploymentParameters extends HostParameters with the fields the
// authorization and upload paths need.
type DeploymentParameters struct {
	HostParameters

	AuthorizationSecretName string
	AuthorizationSecret     string
	GetContentInfoOnly      bool
}

// ContentHash is a short, lowercase-hex content-addressing digest.
type ContentHash = string

// FileSpec describes one file a manifest references.
type FileSpec struct {
	Hash        ContentHash `json:"hash"`
	Size        int64       `json:"size"`
	DownloadURL *string     `json:"downloadUrl,omitempty"`
}

// Drop is one entry of a DeploymentManifest: a source URL (grouping a set
// of files) and the files present under it, keyed by file-relative path.
type Drop struct {
	URL   string              `json:"url"`
	Files map[string]FileSpec `json:"files"`
}

// DeploymentManifest is the on-disk, per-deployment-root manifest: a
// mapping of drop URL to its files, immutable relative to a given
// deployment root.
type DeploymentManifest struct {
	Drops map[string]map[string]FileSpec `json:"drops"`

	// ConfigurationFile is the manifest entry for the deployment
	// configuration blob itself, derived from the manifest's recorded
	// configuration hash. A proxy-configured deployment queues this file
	// for upload/proxying alongside the caller's drops.
	ConfigurationFile FileSpec `json:"-"`
}

// SecretKind distinguishes a plain-text secret from an Azure storage
// access key that must be formatted into a connection string.
type SecretKind string

const (
	SecretKindPlainText SecretKind = "PlainText"
	SecretKindSasToken  SecretKind = "SasToken"
)

// SecretConfiguration names a secret to resolve, its cache TTL in seconds,
// and how its resolved value must be interpreted.
type SecretConfiguration struct {
	Name       string     `json:"name"`
	TimeToLive int64      `json:"timeToLive"`
	Kind       SecretKind `json:"kind"`
}

// ToolDrop is one `drops[]` entry of a DeploymentConfiguration.
type ToolDrop struct {
	URL                string `json:"url"`
	TargetRelativePath string `json:"targetRelativePath"`
}

// ToolConfiguration describes the launch command and environment a
// LauncherManifest must convey to the client.
type ToolConfiguration struct {
	Command                    string                        `json:"command"`
	EnvironmentVariables       map[string]string             `json:"environmentVariables,omitempty"`
	SecretEnvironmentVariables map[string]SecretConfiguration `json:"secretEnvironmentVariables,omitempty"`
}

// ProxyServiceConfiguration names the service-side knobs of a proxy
// endpoint used by peers to reach back into the deployment service.
type ProxyServiceConfiguration struct {
	Port                   int    `json:"port"`
	DeploymentServiceURL   string `json:"deploymentServiceUrl"`
	ProxyAddressTimeToLive int64  `json:"proxyAddressTimeToLive"`
}

// ProxyConfiguration configures the fan-out topology for this deployment,
// when present.
type ProxyConfiguration struct {
	Domain               string                    `json:"domain"`
	Seeds                int                       `json:"seeds"`
	FanOutFactor         int                       `json:"fanOutFactor"`
	TargetRelativePath   string                    `json:"targetRelativePath"`
	ServiceConfiguration ProxyServiceConfiguration `json:"serviceConfiguration"`
}

// DeploymentConfiguration is the preprocessed, per-caller configuration
// derived from the raw configuration file referenced by the manifest.
type DeploymentConfiguration struct {
	Tool                          ToolConfiguration   `json:"tool"`
	Drops                         []ToolDrop          `json:"drops"`
	AzureStorageSecretInfo        SecretConfiguration `json:"azureStorageSecretInfo"`
	AuthorizationSecretNames      []string            `json:"authorizationSecretNames"`
	AuthorizationSecretTimeToLive int64               `json:"authorizationSecretTimeToLive"`
	KeyVaultURI                   string              `json:"keyVaultUri"`
	SasURLTimeToLive              int64               `json:"sasUrlTimeToLive"`
	Proxy                         *ProxyConfiguration `json:"proxy,omitempty"`
}

// LauncherManifest is the value returned to callers.
type LauncherManifest struct {
	ContentID  string              `json:"contentId"`
	Tool       ToolConfiguration   `json:"tool"`
	Drops      []ToolDrop          `json:"drops"`
	Deployment map[string]FileSpec `json:"deployment"`
	IsComplete bool                `json:"isComplete"`
}

// ToBytes implements config.Serializable for LauncherManifest.
func (m LauncherManifest) ToBytes() ([]byte, error) {
	return json.Marshal(m)
}

// DownloadInfo is the internal pairing of a signed download URL with the
// short-lived access token a proxied client presents instead of it.
type DownloadInfo struct {
	DownloadURL string
	AccessToken string
}
