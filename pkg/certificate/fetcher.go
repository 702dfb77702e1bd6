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
	"fmt"

	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/keys"
)

// Credentials authenticate the caller to the certificate service
type Credentials struct {
	// AccessToken is sent as a bearer token
	AccessToken string
}

// Fetcher retrieves key material for an identity.
//
// Implementations must return either complete key material or a *FetchError,
// never both and never a partially populated value.
type Fetcher interface {
	Fetch(ctx context.Context, creds Credentials, id identity.Identity) (*keys.KeyMaterial, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, creds Credentials, id identity.Identity) (*keys.KeyMaterial, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, creds Credentials, id identity.Identity) (*keys.KeyMaterial, error) {
	return f(ctx, creds, id)
}

// ErrorKind classifies why a fetch failed
type ErrorKind string

const (
	// KindRequest means the request could not be built, e.g. missing credentials.
	KindRequest ErrorKind = "request"
	// KindTransport covers connection, proxy and timeout failures.
	KindTransport ErrorKind = "transport"
	// KindStatus is a non-success HTTP status.
	KindStatus ErrorKind = "status"
	// KindDecode is a response that does not parse into key material.
	KindDecode ErrorKind = "decode"
)

// FetchError is the single error type surfaced by a failed fetch.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("certificate fetch failed: %s %d: %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("certificate fetch failed: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(kind ErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}
