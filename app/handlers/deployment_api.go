// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package handlers is the thin HTTP controller layer publishing the
// deployment service's stable surface. The routing/controller logic here
// is not itself the interesting part of this repository — the deployment
// core it delegates to is.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-obvious/server"
	"github.com/go-obvious/server/api"
	"github.com/go-obvious/server/request"
	"github.com/rs/zerolog/log"

	"github.com/deploycache/deployment-service/app/domain/deployment"
	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/deploycache/deployment-service/app/domain/deployment/model"
)

// DeploymentAPI publishes isAuthorized, uploadFilesAndGetManifest,
// getProxyBaseAddress, and tryGetDownloadUrl over HTTP.
type DeploymentAPI struct {
	api.Service
	deployment *deployment.Service
}

// NewDeploymentAPI mounts DeploymentAPI's routes at base.
func NewDeploymentAPI(base string, svc *deployment.Service) *DeploymentAPI {
	a := &DeploymentAPI{
		deployment: svc,
		Service: api.Service{
			APIName: "deployment",
			Mounts:  map[string]*chi.Mux{},
		},
	}
	a.Service.Mounts[base] = a.Routes()
	return a
}

func (a *DeploymentAPI) Register(app server.Server) error {
	return a.Service.Register(app)
}

func (a *DeploymentAPI) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Post("/manifest", a.PostManifest)
	r.Get("/content", a.GetContent)
	r.Get("/proxy-address", a.GetProxyAddress)
	return r
}

// manifestRequest is the wire shape of a PostManifest call.
type manifestRequest struct {
	Machine                 string            `json:"machine"`
	Stamp                   string            `json:"stamp"`
	Ring                    string            `json:"ring"`
	Environment             string            `json:"environment"`
	ConfigurationID         string            `json:"configurationId"`
	Properties              map[string]string `json:"properties"`
	AuthorizationSecretName string            `json:"authorizationSecretName"`
	AuthorizationSecret     string            `json:"authorizationSecret"`
	GetContentInfoOnly      bool              `json:"getContentInfoOnly"`
	WaitForCompletion       bool              `json:"waitForCompletion"`
}

func (req manifestRequest) toParams() model.DeploymentParameters {
	return model.DeploymentParameters{
		HostParameters: model.HostParameters{
			Machine:         req.Machine,
			Stamp:           req.Stamp,
			Ring:            req.Ring,
			Environment:     req.Environment,
			ConfigurationID: req.ConfigurationID,
			Properties:      req.Properties,
		},
		AuthorizationSecretName: req.AuthorizationSecretName,
		AuthorizationSecret:     req.AuthorizationSecret,
		GetContentInfoOnly:      req.GetContentInfoOnly,
	}
}

// PostManifest authorizes the caller and returns its LauncherManifest.
func (a *DeploymentAPI) PostManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req manifestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		request.Reply(r, w, "invalid JSON request", http.StatusBadRequest)
		return
	}

	params := req.toParams()

	if !a.deployment.IsAuthorized(ctx, params) {
		request.Reply(r, w, false, http.StatusOK)
		return
	}

	manifestResult, err := a.deployment.UploadFilesAndGetManifest(ctx, params, req.WaitForCompletion)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to build launcher manifest")
		request.Reply(r, w, err.Error(), httpStatusForKind(err))
		return
	}

	request.Reply(r, w, manifestResult, http.StatusOK)
}

// GetContent resolves a proxied access token to the real download and
// redirects to it.
func (a *DeploymentAPI) GetContent(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		request.Reply(r, w, "missing token", http.StatusBadRequest)
		return
	}

	url, err := a.deployment.TryGetDownloadUrl(token)
	if err != nil {
		request.Reply(r, w, err.Error(), httpStatusForKind(err))
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// GetProxyAddress returns the proxy base URL the caller's machine should
// use, or null if it should talk to the object store directly.
func (a *DeploymentAPI) GetProxyAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := model.HostParameters{
		Machine:         q.Get("machine"),
		Stamp:           q.Get("stamp"),
		Ring:            q.Get("ring"),
		Environment:     q.Get("environment"),
		ConfigurationID: q.Get("configurationId"),
	}

	addr, err := a.deployment.GetProxyBaseAddress(ctx, params)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to resolve proxy address")
		request.Reply(r, w, err.Error(), httpStatusForKind(err))
		return
	}

	request.Reply(r, w, addr, http.StatusOK)
}

// httpStatusForKind translates an errs.Kind into the HTTP status the
// facade's non-goal transport layer reports it as.
func httpStatusForKind(err error) int {
	switch {
	case errors.Is(err, errs.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.Malformed):
		return http.StatusBadRequest
	case errors.Is(err, errs.Transient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
