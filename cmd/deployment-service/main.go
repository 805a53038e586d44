// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-obvious/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deploycache/deployment-service/app/build"
	config "github.com/deploycache/deployment-service/app/config/deployment"
	"github.com/deploycache/deployment-service/app/domain/deployment"
	"github.com/deploycache/deployment-service/app/domain/deployment/manifest"
	"github.com/deploycache/deployment-service/app/domain/deployment/ports"
	"github.com/deploycache/deployment-service/app/domain/deployment/proxy"
	"github.com/deploycache/deployment-service/app/domain/deployment/secrets"
	"github.com/deploycache/deployment-service/app/domain/deployment/secrets/httpvault"
	"github.com/deploycache/deployment-service/app/domain/deployment/storage"
	"github.com/deploycache/deployment-service/app/domain/deployment/storage/miniostore"
	"github.com/deploycache/deployment-service/app/domain/deployment/tokens"
	"github.com/deploycache/deployment-service/app/domain/deployment/upload"
	"github.com/deploycache/deployment-service/app/handlers"
	"github.com/deploycache/deployment-service/app/logging"
	"github.com/deploycache/deployment-service/app/utils"
	"github.com/deploycache/deployment-service/app/utils/parallel"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", configFile, "Path to the configuration file")
	flag.Parse()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("configuration file does not exist")
	}

	settings, err := config.NewSettings(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	loggerOpts := []logging.Option{logging.WithLevel(settings.Logging.Level)}
	if settings.Logging.Console {
		loggerOpts = append(loggerOpts, logging.WithConsole())
	}

	ctx := context.Background()
	logger, err := logging.NewLogger(loggerOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create the logger")
	}
	zerolog.DefaultContextLogger = &logger
	ctx = logger.WithContext(ctx)

	if logger.GetLevel() <= zerolog.DebugLevel {
		enc, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to encode the config")
		}
		fmt.Println(string(enc))
	}

	svc := buildService(settings)

	go func() {
		handleShutdownEvents(ctx)
		os.Exit(0)
	}()

	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := log.Ctx(r.Context()).With().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Str("remote_addr", r.RemoteAddr).
				Logger()

			requestLogger.Trace().Msg("received request")
			next.ServeHTTP(w, r.WithContext(requestLogger.WithContext(r.Context())))
		})
	}

	apis := []server.API{
		handlers.NewDeploymentAPI("/", svc),
	}

	logger.Info().Msg("Starting service")
	server.New(
		build.Version(),
		[]server.Middleware{loggerMiddleware},
		apis...,
	).Run(ctx)
	logger.Info().Msg("Service stopping")
}

// buildService wires the deployment core's process-wide caches and
// adapters from settings. It is the only place production constructors for
// ports.SecretsProvider and ports.CentralStorage are chosen.
func buildService(settings *config.Settings) *deployment.Service {
	clk := &utils.Clock{}

	vault := httpvault.New(settings.Vault.BaseURL, settings.Vault.Token, settings.Vault.MaxRetries)
	secretCache := secrets.NewCache(clk)

	storageRegistry := storage.NewRegistry(clk, secretCache, func(connectionString string) (ports.CentralStorage, error) {
		return miniostore.New(miniostore.Config{
			Endpoint:        settings.Storage.Endpoint,
			AccessKeyID:     connectionString,
			SecretAccessKey: connectionString,
			UseSSL:          settings.Storage.UseSSL,
		})
	})

	tokenRegistry := tokens.NewRegistry(clk)
	queue := parallel.NewActionQueue(settings.Manifest.ActionQueueWidth)
	uploadCoordinator := upload.NewCoordinator(clk, tokenRegistry, queue, settings.Manifest.DeploymentRoot)
	manifestLoader := manifest.NewLoader(settings.Manifest.DeploymentRoot, clk)
	proxyManager := proxy.NewManager(clk)

	return deployment.NewService(
		manifestLoader,
		secretCache,
		storageRegistry,
		uploadCoordinator,
		tokenRegistry,
		proxyManager,
		vault,
	)
}

func handleShutdownEvents(ctx context.Context) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan

	log.Ctx(ctx).Info().Str("signal", sig.String()).Msg("Received signal, service stopping")
}
