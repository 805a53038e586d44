// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package httpvault adapts an HTTP secrets vault to the
// ports.SecretsProvider contract, retrying transient failures via
// go-retryablehttp.
package httpvault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/deploycache/deployment-service/app/domain/deployment/errs"
	"github.com/hashicorp/go-retryablehttp"
)

// Client resolves secrets from a vault's HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// New constructs a Client against baseURL, authenticating with token and
// retrying transient failures up to maxRetries times.
func New(baseURL, token string, maxRetries int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    rc,
	}
}

type secretResponse struct {
	Value string `json:"value"`
}

// GetPlainSecret returns the plain-text value of name.
func (c *Client) GetPlainSecret(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/secrets/%s", c.baseURL, url.PathEscape(name))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errs.Wrap(errs.Fatal, "build vault request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.Transient, fmt.Sprintf("fetch secret %s", name), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.Transient, fmt.Sprintf("read secret %s response", name), err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var parsed secretResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", errs.Wrap(errs.Malformed, fmt.Sprintf("decode secret %s response", name), err)
		}
		return parsed.Value, nil
	case http.StatusNotFound:
		return "", errs.New(errs.NotFound, fmt.Sprintf("secret %s not found", name))
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", errs.New(errs.Unauthorized, fmt.Sprintf("secret %s access denied", name))
	default:
		return "", errs.New(errs.Transient, fmt.Sprintf("secret %s fetch failed with status %d", name, resp.StatusCode))
	}
}
