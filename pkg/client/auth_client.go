// Copyright (C) 2025 SAGE-X Project
//
// This file is part of elo-auth-go.
//
// elo-auth-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// elo-auth-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with elo-auth-go.  If not, see <https://www.gnu.org/licenses/>.

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sage-x-project/elo-auth-go/pkg/session"
)

// FieldSigner produces authentication fields for a payload.
// *session.Session implements it.
type FieldSigner interface {
	CreateMessageFields(ctx context.Context, payload ...string) session.SignResult
}

// Option configures an AuthClient
type Option func(*AuthClient)

// WithRequireAuth controls what happens when signing fails. When true (the
// default) the request is not sent; when false it is sent unsigned.
func WithRequireAuth(require bool) Option {
	return func(c *AuthClient) {
		c.requireAuth = require
	}
}

// WithLogger sets the logger for unsigned-request warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(c *AuthClient) {
		c.logger = logger
	}
}

// AuthClient is an HTTP client that attaches authentication fields to every request
type AuthClient struct {
	signer      FieldSigner
	httpClient  *http.Client
	requireAuth bool
	logger      zerolog.Logger
}

// NewAuthClient creates a new authenticated client.
// If httpClient is nil, http.DefaultClient is used
func NewAuthClient(signer FieldSigner, httpClient *http.Client, opts ...Option) *AuthClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &AuthClient{
		signer:      signer,
		httpClient:  httpClient,
		requireAuth: true,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do signs [method, url, body] and executes the request with the fields as headers
func (c *AuthClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	if err := c.authenticate(ctx, req, body); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	return resp, nil
}

// authenticate sets the auth headers, or decides to go unsigned
func (c *AuthClient) authenticate(ctx context.Context, req *http.Request, body []byte) error {
	if c.signer == nil {
		if c.requireAuth {
			return fmt.Errorf("failed to sign request: no signer configured")
		}
		return nil
	}

	result := c.signer.CreateMessageFields(ctx, req.Method, req.URL.String(), string(body))
	if result.Err != nil {
		if c.requireAuth {
			return fmt.Errorf("failed to sign request: %w", result.Err)
		}
		c.logger.Warn().Err(result.Err).Str("url", req.URL.String()).Msg("sending request unauthenticated")
		return nil
	}

	SetHeaders(req.Header, result.Fields)
	return nil
}

// SetHeaders copies fields into h, one header per field
func SetHeaders(h http.Header, fields session.Fields) {
	for _, field := range fields {
		h.Set(field.Key, field.Value)
	}
}

// readBody drains the request body and puts a fresh reader back
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	_ = req.Body.Close()

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))
	return body, nil
}

// Post sends a POST request with JSON body
func (c *AuthClient) Post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Get sends a GET request
func (c *AuthClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.Do(ctx, req)
}

// Signer returns the field signer
func (c *AuthClient) Signer() FieldSigner {
	return c.signer
}

// RequireAuth reports whether unsigned requests are refused
func (c *AuthClient) RequireAuth() bool {
	return c.requireAuth
}
