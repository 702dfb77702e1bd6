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

package certificate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/keys"
)

const (
	// DefaultURL is the player certificate endpoint
	DefaultURL = "https://api.minecraftservices.com/player/certificates"

	// DefaultTimeout bounds the whole certificate request
	DefaultTimeout = 5 * time.Second

	// maxResponseSize caps how much of a response body is read
	maxResponseSize = 1 << 20
)

// HTTPConfig configures an HTTPFetcher
type HTTPConfig struct {
	// URL of the certificate endpoint (DefaultURL if empty)
	URL string

	// Timeout for the request (DefaultTimeout if zero)
	Timeout time.Duration

	// ProxyURL routes the request through a proxy when set
	ProxyURL string

	// HTTPClient overrides the client built from Timeout and ProxyURL
	HTTPClient *http.Client

	// Logger receives diagnostics (disabled if nil)
	Logger *zerolog.Logger
}

// HTTPFetcher fetches key material from the certificate service over HTTP.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher from cfg
func NewHTTPFetcher(cfg HTTPConfig) (*HTTPFetcher, error) {
	endpoint := cfg.URL
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid certificate URL %q: %w", endpoint, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.ProxyURL != "" {
			proxy, err := url.Parse(cfg.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.ProxyURL, err)
			}
			if proxy.Scheme == "" || proxy.Host == "" {
				return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", cfg.ProxyURL)
			}
			transport.Proxy = http.ProxyURL(proxy)
		}

		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &HTTPFetcher{
		url:        endpoint,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "certificate").Logger(),
	}, nil
}

// keyPairResponse is the JSON body returned by the certificate endpoint
type keyPairResponse struct {
	KeyPair struct {
		PrivateKey string `json:"privateKey"`
		PublicKey  string `json:"publicKey"`
	} `json:"keyPair"`
	PublicKeySignature   string `json:"publicKeySignature"`
	PublicKeySignatureV2 string `json:"publicKeySignatureV2"`
	ExpiresAt            string `json:"expiresAt"`
	RefreshedAfter       string `json:"refreshedAfter"`
}

// Fetch posts an empty body to the certificate endpoint and decodes the key pair.
func (f *HTTPFetcher) Fetch(ctx context.Context, creds Credentials, id identity.Identity) (*keys.KeyMaterial, error) {
	if creds.AccessToken == "" {
		return nil, newFetchError(KindRequest, fmt.Errorf("access token cannot be empty"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, http.NoBody)
	if err != nil {
		return nil, newFetchError(KindRequest, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	f.logger.Debug().Str("identity", id.String()).Str("url", f.url).Msg("fetching key pair certificate")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, newFetchError(KindTransport, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newFetchError(KindTransport, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP error: %s", resp.Status),
		}
	}

	var payload keyPairResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, newFetchError(KindDecode, fmt.Errorf("failed to parse certificate response: %w", err))
	}

	material, err := decodeKeyPair(&payload)
	if err != nil {
		return nil, newFetchError(KindDecode, err)
	}

	f.logger.Debug().
		Str("identity", id.String()).
		Str("key_id", material.KeyPair().ID()).
		Time("expires_at", material.ExpiresAt()).
		Msg("key pair certificate fetched")

	return material, nil
}

// decodeKeyPair turns a response into key material, requiring every field
func decodeKeyPair(payload *keyPairResponse) (*keys.KeyMaterial, error) {
	if payload.KeyPair.PrivateKey == "" {
		return nil, fmt.Errorf("response missing private key")
	}
	if payload.KeyPair.PublicKey == "" {
		return nil, fmt.Errorf("response missing public key")
	}

	privateKey, err := keys.ParseRSAPrivateKeyPEM([]byte(payload.KeyPair.PrivateKey))
	if err != nil {
		return nil, err
	}
	publicKey, publicKeyDER, err := keys.ParseRSAPublicKeyPEM([]byte(payload.KeyPair.PublicKey))
	if err != nil {
		return nil, err
	}
	if !publicKey.Equal(&privateKey.PublicKey) {
		return nil, fmt.Errorf("public key does not match private key")
	}

	encodedSignature := payload.PublicKeySignature
	if encodedSignature == "" {
		encodedSignature = payload.PublicKeySignatureV2
	}
	if encodedSignature == "" {
		return nil, fmt.Errorf("response missing public key signature")
	}
	signature, err := base64.StdEncoding.DecodeString(encodedSignature)
	if err != nil {
		return nil, fmt.Errorf("invalid public key signature encoding: %w", err)
	}

	if payload.ExpiresAt == "" {
		return nil, fmt.Errorf("response missing expiration")
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, payload.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration %q: %w", payload.ExpiresAt, err)
	}

	var refreshedAfter time.Time
	if payload.RefreshedAfter != "" {
		refreshedAfter, err = time.Parse(time.RFC3339Nano, payload.RefreshedAfter)
		if err != nil {
			return nil, fmt.Errorf("invalid refresh time %q: %w", payload.RefreshedAfter, err)
		}
	}

	keyPair, err := keys.NewRSAKeyPair(privateKey)
	if err != nil {
		return nil, err
	}

	return keys.New(keys.Params{
		KeyPair:              keyPair,
		PublicKeyDER:         publicKeyDER,
		CertificateSignature: signature,
		ExpiresAt:            expiresAt,
		RefreshedAfter:       refreshedAfter,
	})
}
