// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config implements the configuration for the deployment service.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerPort        = 8080
	DefaultActionQueueWidth  = 8
	DefaultManifestCacheTTL  = "5m"
)

// Settings is the top-level configuration for the deployment-service
// transport binary.
type Settings struct {
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
	Storage  Storage  `yaml:"storage"`
	Vault    Vault    `yaml:"vault"`
	Manifest Manifest `yaml:"manifest"`
}

type Server struct {
	Port uint `yaml:"port" default:"8080" env:"SERVER_PORT" env-description:"server port"`
}

type Logging struct {
	Level   string `yaml:"level" default:"info" env:"LOG_LEVEL" env-description:"logging level such as debug, info, error"`
	Console bool   `yaml:"console" default:"false" env:"LOG_CONSOLE" env-description:"render logs as human-readable text instead of JSON"`
}

// Storage configures the object-store endpoint the StorageRegistry's
// constructor connects to once a storage secret has been resolved.
type Storage struct {
	Endpoint string `yaml:"endpoint" env:"STORAGE_ENDPOINT" env-description:"object store endpoint"`
	UseSSL   bool   `yaml:"use_ssl" default:"true" env:"STORAGE_USE_SSL" env-description:"use TLS when talking to the object store"`
}

// Vault configures the SecretsProvider adapter.
type Vault struct {
	BaseURL    string `yaml:"base_url" env:"VAULT_BASE_URL" env-description:"base URL of the secrets vault"`
	Token      string `yaml:"token" env:"VAULT_TOKEN" env-description:"vault access token"`
	MaxRetries int    `yaml:"max_retries" default:"5" env:"VAULT_MAX_RETRIES" env-description:"number of times the vault HTTP client retries on failure"`
}

// Manifest configures the ManifestLoader's deployment root.
type Manifest struct {
	DeploymentRoot string `yaml:"deployment_root" env:"DEPLOYMENT_ROOT" env-description:"path to the deployment root directory"`
	ActionQueueWidth int  `yaml:"action_queue_width" default:"8" env:"ACTION_QUEUE_WIDTH" env-description:"maximum concurrent uploads"`
}

// NewSettings loads Settings from configFiles in order, each overlaying the
// last, then validates the result.
func NewSettings(configFiles ...string) (*Settings, error) {
	var cfg Settings

	if configFiles == nil {
		return nil, errors.New("the config files slice cannot be nil")
	}

	for _, cfgFile := range configFiles {
		if cfgFile == "" {
			continue
		}
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("no config %s", cfgFile)
		}
		if err := cleanenv.ReadConfig(cfgFile, &cfg); err != nil {
			return nil, fmt.Errorf("config read %s: %w", cfgFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to validate settings")
	}

	return &cfg, nil
}

// Validate fills in defaults cleanenv's tag alone cannot express and
// rejects configurations missing a required field.
func (s *Settings) Validate() error {
	s.Manifest.DeploymentRoot = strings.TrimSpace(s.Manifest.DeploymentRoot)
	if s.Manifest.DeploymentRoot == "" {
		return errors.New("manifest.deployment_root is empty")
	}
	if s.Manifest.ActionQueueWidth <= 0 {
		s.Manifest.ActionQueueWidth = DefaultActionQueueWidth
	}

	if s.Server.Port == 0 {
		s.Server.Port = DefaultServerPort
	}

	if strings.TrimSpace(s.Storage.Endpoint) == "" {
		return errors.New("storage.endpoint is empty")
	}

	if strings.TrimSpace(s.Vault.BaseURL) == "" {
		return errors.New("vault.base_url is empty")
	}

	return nil
}

// ToBytes implements config.Serializable.
func (s *Settings) ToBytes() ([]byte, error) {
	return yaml.Marshal(s)
}
