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

package transport

import (
	"context"
	"net/http"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"

	"github.com/sage-x-project/elo-auth-go/pkg/client"
)

// WithSessionHTTPTransport returns a FactoryOption that enables
// session-authenticated HTTP/JSON-RPC 2.0 transport for a2a-go clients.
//
// Example:
//
//	c, err := a2aclient.NewFromCard(
//	    ctx,
//	    agentCard,
//	    transport.WithSessionHTTPTransport(sess, nil),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Destroy()
//
//	task, err := c.SendMessage(ctx, message)
func WithSessionHTTPTransport(
	signer client.FieldSigner,
	httpClient *http.Client,
	opts ...Option,
) a2aclient.FactoryOption {
	return a2aclient.WithTransport(
		a2a.TransportProtocolJSONRPC,
		a2aclient.TransportFactoryFn(func(ctx context.Context, url string, card *a2a.AgentCard) (a2aclient.Transport, error) {
			return NewSessionHTTPTransport(url, signer, httpClient, opts...), nil
		}),
	)
}

// NewSessionAuthenticatedClient creates an a2a-go client whose requests all
// carry authentication fields from signer.
//
// This is equivalent to:
//
//	a2aclient.NewFromCard(ctx, card, WithSessionHTTPTransport(signer, nil), a2aclient.WithInterceptors(...))
func NewSessionAuthenticatedClient(
	ctx context.Context,
	signer client.FieldSigner,
	card *a2a.AgentCard,
	interceptors ...a2aclient.CallInterceptor,
) (*a2aclient.Client, error) {
	opts := []a2aclient.FactoryOption{
		WithSessionHTTPTransport(signer, nil),
	}
	if len(interceptors) > 0 {
		opts = append(opts, a2aclient.WithInterceptors(interceptors...))
	}
	return a2aclient.NewFromCard(ctx, card, opts...)
}

// NewSessionAuthenticatedClientWithConfig is like NewSessionAuthenticatedClient
// but allows specifying a custom Config.
func NewSessionAuthenticatedClientWithConfig(
	ctx context.Context,
	signer client.FieldSigner,
	card *a2a.AgentCard,
	config a2aclient.Config,
) (*a2aclient.Client, error) {
	return a2aclient.NewFromCard(
		ctx,
		card,
		a2aclient.WithConfig(config),
		WithSessionHTTPTransport(signer, nil),
	)
}
